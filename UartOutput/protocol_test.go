package UartOutput

import (
	"reflect"
	"testing"
)

func Test_stuffPacket(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantRet frame
	}{
		{
			name:    "empty packet",
			data:    []byte{},
			wantRet: frame{0xC0},
		},
		{
			name:    "no escape symbols",
			data:    []byte{0x00, 0x01, 0x02, 0xFF},
			wantRet: frame{0xC0, 0x00, 0x01, 0x02, 0xFF},
		},
		{
			name:    "with escape symbols",
			data:    []byte{0xC0, 0xDB, 0x00, 0x01, 0x02, 0xFF, 0xC0},
			wantRet: frame{0xC0, 0xDB, 0xDC, 0xDB, 0xDD, 0x00, 0x01, 0x02, 0xFF, 0xDB, 0xDC},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if gotRet := stuffPacket(tt.data); !reflect.DeepEqual(gotRet, tt.wantRet) {
				t.Errorf("stuffPacket() = %v, want %v", gotRet, tt.wantRet)
			}
		})
	}
}

func Test_unstuffPacket(t *testing.T) {
	tests := []struct {
		name    string
		data    frame
		wantRet []byte
		wantErr error
	}{
		{"empty packet", frame{0xC0}, []byte{}, nil},
		{"no escape symbols", frame{0xC0, 0x11, 0x22, 0x33}, []byte{0x11, 0x22, 0x33}, nil},
		{"with escape symbols", frame{0xC0, 0xDB, 0xDC, 0x11, 0x22, 0x33, 0xDB, 0xDD}, []byte{0xC0, 0x11, 0x22, 0x33, 0xDB}, nil},
		{"nothing", frame{}, nil, errNoStart},
		{"no 0xC0 at start", frame{0xDB, 0xC0}, nil, errNoStart},
		{"extra 0xC0", frame{0xC0, 0xC0}, nil, errExtraEnd},
		{"incomplete escape", frame{0xC0, 0xDB}, nil, errOpenEscape},
		{"incomplete escape after data", frame{0xC0, 0x00, 0xDB, 0xDC, 0x00, 0xDB}, nil, errOpenEscape},
		{"incorrect escape", frame{0xC0, 0xDB, 0x00}, nil, errBadEscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRet, err := unstuffPacket(tt.data)
			if err != tt.wantErr {
				t.Fatalf("unstuffPacket() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(gotRet, tt.wantRet) {
				t.Errorf("unstuffPacket() = %v, want %v", gotRet, tt.wantRet)
			}
		})
	}
}
