package parser

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meoying/mysqlmimic/internal/errs"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/flags"
)

// buildResponse41 按协议手搓一个客户端握手响应载荷
func buildResponse41(clientFlags flags.CapabilityFlag, username string, authResponse []byte, database string) []byte {
	p := make([]byte, 0, 64)
	p = binary.LittleEndian.AppendUint32(p, uint32(clientFlags))
	p = binary.LittleEndian.AppendUint32(p, 1<<24-1)
	p = append(p, 33)
	p = append(p, make([]byte, 23)...)
	p = append(p, username...)
	p = append(p, 0x00)
	p = append(p, byte(len(authResponse)))
	p = append(p, authResponse...)
	if database != "" {
		p = append(p, database...)
		p = append(p, 0x00)
	}
	return p
}

func TestHandshakeResponse41_Parse(t *testing.T) {
	authResponse := make([]byte, 20)
	for i := range authResponse {
		authResponse[i] = byte(i)
	}

	testcases := []struct {
		name         string
		payload      []byte
		wantUser     string
		wantDatabase string
		wantErr      error
	}{
		{
			name: "带库名",
			payload: buildResponse41(
				flags.ClientProtocol41|flags.ClientSecureConnection|flags.ClientConnectWithDB,
				"myuser", authResponse, "demo"),
			wantUser:     "myuser",
			wantDatabase: "demo",
		},
		{
			name: "不带库名",
			payload: buildResponse41(
				flags.ClientProtocol41|flags.ClientSecureConnection,
				"myuser", authResponse, ""),
			wantUser: "myuser",
		},
		{
			name:    "报文太短",
			payload: []byte{0x01, 0x02},
			wantErr: errs.ErrPktMalformed,
		},
		{
			name: "声明的应答长度超出载荷",
			payload: func() []byte {
				p := buildResponse41(flags.ClientProtocol41, "myuser", nil, "")
				// 声称有 20 个字节的应答，实际一个都没有
				p[len(p)-1] = 20
				return p
			}(),
			wantErr: errs.ErrPktMalformed,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			p := HandshakeResponse41{}
			err := p.Parse(tc.payload)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantUser, p.Username())
			assert.Equal(t, tc.wantDatabase, p.Database())
			assert.Equal(t, authResponse, p.AuthResponse())
			assert.Equal(t, uint32(33), p.CharacterSet())
			assert.Equal(t, uint32(1<<24-1), p.MaxPacketSize())
		})
	}
}
