package abicodec

// Calldata prefixes the ABI-encoded arguments with a 4-byte function selector
func Calldata(selector [4]byte, types []string, values ...any) ([]byte, error) {
	args, err := Encode(types, values...)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 4+len(args))
	out = append(out, selector[:]...)
	return append(out, args...), nil
}

// SplitCalldata separates the selector from the encoded arguments
func SplitCalldata(data []byte) (selector [4]byte, args []byte, ok bool) {
	if len(data) < 4 {
		return selector, nil, false
	}
	copy(selector[:], data[:4])
	return selector, data[4:], true
}
