package cmd

import (
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/connection"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/builder"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/internal/packet/encoding"
	"github.com/meoying/mysqlmimic/internal/protocol/mysql/rule"
)

type BaseExecutor struct {
}

func (e *BaseExecutor) parseQuery(payload []byte) string {
	// 第一个字节是 cmd
	return string(payload[1:])
}

func (e *BaseExecutor) serverStatus() packet.SeverStatus {
	return packet.ServerStatusAutoCommit
}

// writeResponse 把调度器产出的终结响应写回客户端
// 三种形态里恰好有一种，全空按裸 OK 兜底
func (e *BaseExecutor) writeResponse(conn *connection.Conn, resp *rule.Response) error {
	switch {
	case resp == nil:
		return e.writeOKRespPacket(conn, &rule.OKSpec{})
	case resp.Err != nil:
		return e.writeErrRespPacket(conn, resp.Err)
	case resp.ResultSet != nil:
		return e.writeResultSetRespPackets(conn, resp.ResultSet)
	default:
		return e.writeOKRespPacket(conn, resp.OK)
	}
}

func (e *BaseExecutor) writeOKRespPacket(conn *connection.Conn, spec *rule.OKSpec) error {
	if spec == nil {
		spec = &rule.OKSpec{}
	}
	b := &builder.OKPacketBuilder{
		AffectedRows: spec.AffectedRows,
		LastInsertID: spec.LastInsertID,
		StatusFlags:  e.serverStatus(),
		Warnings:     spec.Warnings,
		Info:         spec.Msg,
	}
	return conn.WritePacket(b.Build())
}

func (e *BaseExecutor) writeErrRespPacket(conn *connection.Conn, spec *rule.ErrorSpec) error {
	b := builder.NewErrorPacketBuilder(builder.NewError(spec.Code, spec.SQLState, spec.Msg))
	return conn.WritePacket(b.Build())
}

// writeResultSetRespPackets 按文本协议写回一个完整的结果集
// 总包结构 = 字段数量包 + 字段数 * 字段描述包 + eof包 + 行数 * 行数据包 + eof包
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_query_response_text_resultset.html
func (e *BaseExecutor) writeResultSetRespPackets(conn *connection.Conn, rs *rule.ResultSet) error {
	// 写入字段数量
	colLenPack := append(make([]byte, 4, 13), encoding.LengthEncodeInteger(uint64(len(rs.Columns)))...)
	if err := conn.WritePacket(colLenPack); err != nil {
		return err
	}
	// 写入字段描述包和收尾的 EOF
	if err := e.writeFieldsRespPackets(conn, rs.Columns); err != nil {
		return err
	}
	// 写入真实每行数据
	for _, row := range rs.Rows {
		b := &builder.TextResultsetRowPacket{Values: row}
		if err := conn.WritePacket(b.Build()); err != nil {
			return err
		}
	}
	return e.writeEOFPacket(conn)
}

// writeFieldsRespPackets FIELD_LIST 的响应只有字段描述包加一个 EOF
// https://dev.mysql.com/doc/dev/mysql-server/latest/page_protocol_com_field_list.html
func (e *BaseExecutor) writeFieldsRespPackets(conn *connection.Conn, cols []packet.Column) error {
	for _, col := range cols {
		b := &builder.ColumnDefinition41Packet{Column: col}
		if err := conn.WritePacket(b.Build()); err != nil {
			return err
		}
	}
	return e.writeEOFPacket(conn)
}

func (e *BaseExecutor) writeEOFPacket(conn *connection.Conn) error {
	b := &builder.EOFPacketBuilder{StatusFlags: e.serverStatus()}
	return conn.WritePacket(b.Build())
}
