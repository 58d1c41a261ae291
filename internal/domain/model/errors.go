package model

import (
	"errors"
	"fmt"
)

var (
	// ErrLoginFailed セッションが無効または期限切れ
	ErrLoginFailed = errors.New("ログインに失敗しました")
	// ErrTransport ネットワーク往復の失敗
	ErrTransport = errors.New("通信に失敗しました")
	// ErrRemoteServer サーバーレスポンスを解釈できない
	ErrRemoteServer = errors.New("リモートサーバーエラー")
)

// RemoteServerError レスポンスのデコード失敗などサーバー起因のエラー
type RemoteServerError struct {
	Op  string
	Err error
}

// NewRemoteServerError 操作名と原因からエラーを作成
func NewRemoteServerError(op string, err error) *RemoteServerError {
	return &RemoteServerError{Op: op, Err: err}
}

func (e *RemoteServerError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRemoteServer.Error(), e.Op, e.Err)
}

func (e *RemoteServerError) Unwrap() error {
	return e.Err
}

// Is errors.Is(err, ErrRemoteServer) を満たす
func (e *RemoteServerError) Is(target error) bool {
	return target == ErrRemoteServer
}
