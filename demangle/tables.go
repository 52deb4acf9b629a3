package demangle

// standardTypes maps the single character following an 'S' short form to
// the Swift standard library type or protocol it abbreviates.
var standardTypes = map[byte]string{
	'A': "Swift.AutoreleasingUnsafeMutablePointer",
	'B': "Swift.BinaryFloatingPoint",
	'D': "Swift.Dictionary",
	'E': "Swift.Encodable",
	'F': "Swift.FloatingPoint",
	'G': "Swift.RandomNumberGenerator",
	'H': "Swift.Hashable",
	'J': "Swift.Character",
	'K': "Swift.BidirectionalCollection",
	'L': "Swift.Comparable",
	'M': "Swift.MutableCollection",
	'N': "Swift.ClosedRange",
	'O': "Swift.ObjectIdentifier",
	'P': "Swift.UnsafePointer",
	'Q': "Swift.Equatable",
	'R': "Swift.UnsafeBufferPointer",
	'S': "Swift.String",
	'T': "Swift.Sequence",
	'U': "Swift.UnsignedInteger",
	'V': "Swift.UnsafeRawPointer",
	'W': "Swift.UnsafeRawBufferPointer",
	'X': "Swift.RangeExpression",
	'Y': "Swift.RawRepresentable",
	'Z': "Swift.SignedInteger",
	'a': "Swift.Array",
	'b': "Swift.Bool",
	'c': "Swift.UnicodeScalar",
	'd': "Swift.Double",
	'e': "Swift.Decodable",
	'f': "Swift.Float",
	'h': "Swift.Set",
	'i': "Swift.Int",
	'j': "Swift.Numeric",
	'k': "Swift.RandomAccessCollection",
	'l': "Swift.Collection",
	'm': "Swift.RangeReplaceableCollection",
	'n': "Swift.Range",
	'p': "Swift.UnsafeMutablePointer",
	'q': "Swift.Optional",
	'r': "Swift.UnsafeMutableBufferPointer",
	'u': "Swift.UInt",
	'v': "Swift.UnsafeMutableRawPointer",
	'w': "Swift.UnsafeMutableRawBufferPointer",
	'x': "Swift.Strideable",
	'z': "Swift.BinaryInteger",
}
