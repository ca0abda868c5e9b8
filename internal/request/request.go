// Package request はHTTPリクエストの受信と解析を担う
package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CRLF はHTTPの行区切り
const CRLF = "\r\n"

// HeaderTerminator はヘッダー部の終端を表す
const HeaderTerminator = CRLF + CRLF

var (
	// ErrMethodNotAllowed はGET以外のメソッドを受け取ったことを表す
	ErrMethodNotAllowed = errors.New("サポートされていないメソッド")
	// ErrMalformedRequest はリクエスト行を解析できないことを表す
	ErrMalformedRequest = errors.New("不正なリクエスト")
	// ErrHeaderTooLarge はヘッダー終端が上限内に現れなかったことを表す
	ErrHeaderTooLarge = errors.New("リクエストヘッダーが大きすぎます")
)

// Request は1接続分のリクエスト
type Request struct {
	Method string
	Path   string
}

// Parse は受信したリクエスト文字列の1行目からメソッドとパスを取り出す
// メソッドがGETでない場合は ErrMethodNotAllowed を返す
func Parse(raw string) (*Request, error) {
	line, _, _ := strings.Cut(raw, CRLF)

	parts := strings.Split(line, " ")
	if len(parts) < 2 || parts[0] == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequest, line)
	}

	req := &Request{
		Method: parts[0],
		Path:   parts[1],
	}

	if req.Method != "GET" {
		return req, fmt.Errorf("%w: %s", ErrMethodNotAllowed, req.Method)
	}
	if !strings.HasPrefix(req.Path, "/") {
		return req, fmt.Errorf("%w: パスが/で始まっていません: %q", ErrMalformedRequest, req.Path)
	}

	return req, nil
}

// ReadHeader は r から chunk バイトずつ読み込み、ヘッダー終端が現れるまで蓄積する
// 蓄積量が limit を超えた場合は ErrHeaderTooLarge を返す
// onChunk が nil でなければ読み込んだ各チャンクで呼ばれる
func ReadHeader(r io.Reader, chunk, limit int, onChunk func([]byte)) (string, error) {
	var buffer bytes.Buffer
	buf := make([]byte, chunk)
	terminator := []byte(HeaderTerminator)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if onChunk != nil {
				onChunk(buf[:n])
			}
			// 直前のチャンクにまたがる終端も検出できるよう、蓄積済みの末尾から探す
			start := buffer.Len() - (len(terminator) - 1)
			if start < 0 {
				start = 0
			}
			buffer.Write(buf[:n])
			if bytes.Contains(buffer.Bytes()[start:], terminator) {
				return buffer.String(), nil
			}
			if buffer.Len() > limit {
				return "", fmt.Errorf("%w: %dバイト超過", ErrHeaderTooLarge, limit)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: ヘッダー終端の前に接続が閉じられました", ErrMalformedRequest)
			}
			return "", fmt.Errorf("リクエストの受信に失敗: %w", err)
		}
	}
}
