// Package server は、コンテンツルートを配信する最小限のHTTPサーバーを管理します。
//
// このパッケージは、TCPリスナーの起動、接続の受け付け、
// リクエストの解析と解決、レスポンスの送信を担当します。
//
// 責務:
//   - TCPリスナーの起動と管理
//   - 接続を1つずつ順番に処理する受け付けループ
//   - ヘッダー終端までの受信とリクエスト行の解析
//   - 404/405/500 への振り分けとレスポンスの送信
//   - ステータスAPI（/health, /api/status）の提供
//
// 仕様:
//   - 受け付けと処理はnetパッケージで直接行う（net/httpは使わない）
//   - 同時に処理する接続は常に1つ
//   - 1接続につき1レスポンスを送信し、必ず接続を閉じる
//   - ステータスAPIはgin-gonic/ginを使用
//   - シグナルまたはコンテキストのキャンセルでリスナーを閉じて終了
package server
