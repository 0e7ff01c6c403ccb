// Package engine dispatches indicator computations: a pure synchronous
// registry plus an asynchronous batch dispatcher with request
// supersession and per-request failure isolation.
package engine

import (
	"errors"
	"fmt"

	"chartcore/internal/market"
)

// ErrUnknownKind is returned for a kind no computation is registered
// for. Silently coercing to another indicator would be a correctness
// defect, so the error is explicit and fatal to that request only.
var ErrUnknownKind = errors.New("unknown indicator kind")

// ErrBreadthInput marks kinds that consume market-breadth rows, not
// OHLCV bars.
var ErrBreadthInput = errors.New("kind requires breadth input")

// Compute 同步计算入口：纯函数，无副作用。数据不足或参数非法时
// 返回空结果而不是错误，只有未知 kind 才报错。
func Compute(kind string, bars []market.Bar, params Params) (Result, error) {
	if fn, ok := registry[kind]; ok {
		return fn(bars, params), nil
	}
	if _, ok := breadthRegistry[kind]; ok {
		return Result{}, fmt.Errorf("%w: %q", ErrBreadthInput, kind)
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// ComputeBreadth 宽度类指标的同步入口。
func ComputeBreadth(kind string, breadth []market.Breadth) (Result, error) {
	fn, ok := breadthRegistry[kind]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return Result{Lines: market.Bundle{{Name: kind, Points: fn(breadth)}}}, nil
}
