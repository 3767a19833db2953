package UartOutput

import (
	"errors"
)

const (
	slipEnd    = 0xC0
	slipEsc    = 0xDB
	slipEscEnd = 0xDC
	slipEscEsc = 0xDD
)

var (
	errNoStart      = errors.New("frame begins with not 0xC0")
	errExtraEnd     = errors.New("extra 0xC0 inside a single frame")
	errBadEscape    = errors.New("unexpected escape sequence")
	errOpenEscape   = errors.New("unfinished escape sequence at the end of a frame")
	errEmptyPayload = errors.New("frame has no pipe byte")
)

type frame []byte

func stuffPacket(data []byte) (ret frame) {
	ret = frame{slipEnd}
	for _, v := range data {
		switch v {
		case slipEnd:
			ret = append(ret, slipEsc, slipEscEnd)
		case slipEsc:
			ret = append(ret, slipEsc, slipEscEsc)
		default:
			ret = append(ret, v)
		}
	}
	return ret
}

func unstuffPacket(data frame) ([]byte, error) {
	if 0 == len(data) || slipEnd != data[0] {
		return nil, errNoStart
	}
	esc := false
	ret := []byte{}
	for _, v := range data[1:] {
		if slipEnd == v {
			return nil, errExtraEnd
		}
		if !esc {
			if slipEsc == v {
				esc = true
			} else {
				ret = append(ret, v)
			}
			continue
		}
		switch v {
		case slipEscEnd:
			ret = append(ret, slipEnd)
		case slipEscEsc:
			ret = append(ret, slipEsc)
		default:
			return nil, errBadEscape
		}
		esc = false
	}
	if esc {
		return nil, errOpenEscape
	}
	return ret, nil
}
