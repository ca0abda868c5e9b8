// Package resolver はリクエストURIをコンテンツルート配下のファイルやディレクトリに対応付ける
//
// ファイルは内容と拡張子から引いたMIMEタイプを返し、
// ディレクトリは直下のエントリ名を列挙した text/plain を返す。
// パストラバーサル（".." など）の正規化は行わない。
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound はURIに対応するファイルもディレクトリも存在しないことを表す
	ErrNotFound = errors.New("ファイルが見つかりません")
	// ErrUnknownMimeType は拡張子に対応するMIMEタイプがないことを表す
	ErrUnknownMimeType = errors.New("未知の拡張子")
)

// DirectoryMimeType はディレクトリ一覧のMIMEタイプ
const DirectoryMimeType = "text/plain"

// Content は解決済みのレスポンス本文とMIMEタイプ
type Content struct {
	Body     []byte
	MimeType string
}

// Resolver はコンテンツルートを起点にURIを解決する
type Resolver struct {
	root         string
	sniffUnknown bool
}

// Option はResolverの設定を変更する
type Option func(*Resolver)

// WithMimeSniffing は未知の拡張子を内容から判定するかを設定する
func WithMimeSniffing(enabled bool) Option {
	return func(r *Resolver) {
		r.sniffUnknown = enabled
	}
}

// New は新しいResolverを作成する
func New(root string, opts ...Option) *Resolver {
	r := &Resolver{root: root}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root はコンテンツルートを返す
func (r *Resolver) Root() string {
	return r.root
}

// localPath はコンテンツルートからの相対パスをローカルパスにする
// filepath.Join と違い Clean しないので、"/sample.txt/" や ".." もそのままOSに渡る
func (r *Resolver) localPath(rel string) string {
	return r.root + string(filepath.Separator) + filepath.FromSlash(rel)
}

// Resolve はURIに対応する本文とMIMEタイプを返す
// キャッシュは行わず、呼び出しのたびにファイルシステムを読む
func (r *Resolver) Resolve(uri string) (*Content, error) {
	if !strings.HasPrefix(uri, "/") {
		return nil, fmt.Errorf("URIが/で始まっていません: %q", uri)
	}

	local := r.localPath(uri[1:])

	// 参照できないパスは存在しないものとして扱う
	info, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, uri, err)
	}

	switch {
	case info.Mode().IsRegular():
		return r.resolveFile(uri[1:])
	case info.IsDir():
		return r.resolveDir(uri, local)
	default:
		// デバイスファイルやソケットなどは配信しない
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
}

// resolveFile はファイルの内容とMIMEタイプを返す
func (r *Resolver) resolveFile(rel string) (*Content, error) {
	body, err := r.RetrieveBytes(rel)
	if err != nil {
		return nil, err
	}

	mimeType, err := MimeType(rel)
	if err != nil {
		if !r.sniffUnknown {
			return nil, err
		}
		mimeType = sniffMimeType(body)
	}

	return &Content{Body: body, MimeType: mimeType}, nil
}

// resolveDir はディレクトリ直下のエントリ名を ", " 区切りで列挙する
// 先頭には要求されたURIそのものが入る
func (r *Resolver) resolveDir(uri, local string) (*Content, error) {
	dir, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("ディレクトリのオープンに失敗: %w", err)
	}
	defer func() {
		_ = dir.Close()
	}()

	// 並び順はファイルシステムの列挙順のまま
	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, fmt.Errorf("ディレクトリの読み込みに失敗: %w", err)
	}

	var b strings.Builder
	b.WriteString(uri)
	for _, name := range names {
		b.WriteString(", ")
		b.WriteString(name)
	}

	return &Content{Body: []byte(b.String()), MimeType: DirectoryMimeType}, nil
}

// RetrieveBytes はコンテンツルートからの相対パスにあるファイルの内容を返す
// path は先頭に / を持ってはならない
func (r *Resolver) RetrieveBytes(path string) ([]byte, error) {
	if strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("先頭に/を含むパスは指定できません: %q", path)
	}
	body, err := os.ReadFile(r.localPath(path))
	if err != nil {
		return nil, fmt.Errorf("ファイルの読み込みに失敗: %w", err)
	}
	return body, nil
}
