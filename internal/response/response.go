// Package response はHTTPレスポンスをワイヤ形式に直列化する
package response

import (
	"bytes"
	"io"
	"strconv"
)

const crlf = "\r\n"

// Version はレスポンスのHTTPバージョン
const Version = "HTTP/1.1"

// Response はステータス行、Content-Typeヘッダー、本文からなるレスポンス
type Response struct {
	Status      int
	Phrase      string
	ContentType string // 空の場合はヘッダー行を出力しない
	Body        []byte
}

// OK は200レスポンスを作成する
func OK(body []byte, mimeType string) *Response {
	return &Response{
		Status:      200,
		Phrase:      "OK",
		ContentType: mimeType,
		Body:        body,
	}
}

// NotFound は404レスポンスを作成する
func NotFound() *Response {
	return &Response{
		Status: 404,
		Phrase: "File Not Found",
		Body:   []byte("<h1>404 Not Found</h1>"),
	}
}

// MethodNotAllowed は405レスポンスを作成する
func MethodNotAllowed() *Response {
	return &Response{
		Status: 405,
		Phrase: "Method Not Allowed",
		Body:   []byte("You can't do that on this server!"),
	}
}

// InternalError は500レスポンスを作成する
func InternalError() *Response {
	return &Response{
		Status: 500,
		Phrase: "Internal Server Error",
		Body:   []byte("Something went wrong on this server."),
	}
}

// Bytes はレスポンスをワイヤ形式のバイト列にする
//
//	HTTP/1.1 200 OK\r\n
//	Content-Type: text/plain\r\n
//	\r\n
//	<body>
//
// 本文の後ろに終端は付けない
func (r *Response) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(Version)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(r.Status))
	buf.WriteByte(' ')
	buf.WriteString(r.Phrase)
	buf.WriteString(crlf)
	if r.ContentType != "" {
		buf.WriteString("Content-Type: ")
		buf.WriteString(r.ContentType)
		buf.WriteString(crlf)
	}
	buf.WriteString(crlf)
	buf.Write(r.Body)
	return buf.Bytes()
}

// WriteTo はレスポンスを一度に w へ書き込む
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}
