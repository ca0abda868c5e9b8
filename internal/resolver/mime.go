package resolver

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// mimeTypes は拡張子とContent-Typeの対応表
var mimeTypes = map[string]string{
	".txt":  "text/plain",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".py":   "text/x-python",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".ico":  "image/vnd.microsoft.icon",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
}

// MimeType はファイル名の拡張子からMIMEタイプを返す
// 対応表にない場合はプラットフォームの対応表を参照し、それでも見つからなければ ErrUnknownMimeType を返す
func MimeType(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := mimeTypes[ext]; ok {
		return t, nil
	}

	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			// "; charset=utf-8" などのパラメータは落とす
			mediaType, _, err := mime.ParseMediaType(t)
			if err == nil {
				return mediaType, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMimeType, ext)
}

// sniffMimeType はファイル内容からMIMEタイプを判定する
func sniffMimeType(content []byte) string {
	// パラメータなしのメディアタイプのみ返す
	t, _, err := mime.ParseMediaType(mimetype.Detect(content).String())
	if err != nil {
		return "application/octet-stream"
	}
	return t
}
