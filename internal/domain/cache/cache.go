package cache

import "time"

// Clock 現在時刻の取得元（テストで差し替える）
type Clock interface {
	Now() time.Time
}

// ClockFunc 関数を Clock として扱うアダプタ
type ClockFunc func() time.Time

// Now 現在時刻を返す
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock 実時間の Clock
var SystemClock Clock = ClockFunc(time.Now)

// IsStale 最終更新から有効期限を超えて経過しているか
// lastUpdateMs が0（未取得）の場合も経過とみなされる
func IsStale(nowMs, lastUpdateMs int64, expiry time.Duration) bool {
	return nowMs-lastUpdateMs > expiry.Milliseconds()
}

// Cache 最終更新時刻と有効期限を持つ値のキャッシュ
//
// 単体ではゴルーチン安全ではない。利用側で排他すること。
type Cache[T any] struct {
	value        T
	newValue     func() T
	lastUpdateMs int64
	expiry       time.Duration
	enabled      bool
	clock        Clock
}

// New 新しいキャッシュを作成（有効状態、空の値）
func New[T any](newValue func() T, expiry time.Duration, clock Clock) *Cache[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &Cache[T]{
		value:    newValue(),
		newValue: newValue,
		expiry:   expiry,
		enabled:  true,
		clock:    clock,
	}
}

// NowMs 注入された Clock の現在時刻（Unixミリ秒）
func (c *Cache[T]) NowMs() int64 {
	return c.clock.Now().UnixMilli()
}

// Stale 現在時刻で期限切れか
func (c *Cache[T]) Stale() bool {
	return IsStale(c.NowMs(), c.lastUpdateMs, c.expiry)
}

// Since サーバーに送る「ここまで取得済み」の時刻（未取得なら0）
func (c *Cache[T]) Since() int64 {
	return c.lastUpdateMs
}

// Value キャッシュされている値
func (c *Cache[T]) Value() T {
	return c.value
}

// Commit 値を置き換えて最終更新時刻を現在時刻にする
func (c *Cache[T]) Commit(value T) {
	c.value = value
	c.lastUpdateMs = c.NowMs()
}

// Reset 最終更新時刻を0にして空の値に戻す
func (c *Cache[T]) Reset() {
	c.lastUpdateMs = 0
	c.value = c.newValue()
}

// Fresh 空の値を新しく作る（キャッシュ状態は変更しない）
func (c *Cache[T]) Fresh() T {
	return c.newValue()
}

// Enabled キャッシュが有効か
func (c *Cache[T]) Enabled() bool {
	return c.enabled
}

// SetEnabled キャッシュの有効・無効を切り替える
func (c *Cache[T]) SetEnabled(enabled bool) {
	c.enabled = enabled
}

// Expiry 有効期限
func (c *Cache[T]) Expiry() time.Duration {
	return c.expiry
}

// SetExpiry 有効期限を設定する（負の値は0として扱う）
func (c *Cache[T]) SetExpiry(expiry time.Duration) {
	if expiry < 0 {
		expiry = 0
	}
	c.expiry = expiry
}
