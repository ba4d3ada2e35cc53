package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextResultsetRowPacket_Build(t *testing.T) {
	tests := []struct {
		name   string
		values [][]byte
		want   []byte
	}{
		{
			name:   "普通一行",
			values: [][]byte{[]byte("1"), []byte("Tom")},
			want:   []byte{0x01, '1', 0x03, 'T', 'o', 'm'},
		},
		{
			name:   "带NULL的一行",
			values: [][]byte{[]byte("2"), nil},
			want:   []byte{0x01, '2', 0xFB},
		},
		{
			name:   "空串不是NULL",
			values: [][]byte{{}},
			want:   []byte{0x00},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &TextResultsetRowPacket{Values: tt.values}
			assert.Equal(t, tt.want, b.Build()[4:])
		})
	}
}
