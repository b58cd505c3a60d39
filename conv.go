// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/squeeze

package squeeze

const maxInt = int(^uint(0) >> 1)

// mulInt multiplies non-negative ints, reporting overflow.
func mulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, ErrSizeOverflow
	}
	if a != 0 && b > maxInt/a {
		return 0, ErrSizeOverflow
	}

	return a * b, nil
}

// bufferLen returns width*height*channels, reporting overflow.
func bufferLen(width, height, channels int) (int, error) {
	n, err := mulInt(width, height)
	if err != nil {
		return 0, err
	}

	return mulInt(n, channels)
}
