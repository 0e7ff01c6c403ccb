package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"chartcore/internal/logger"
	"chartcore/internal/market"
)

// Request 一次异步计算请求。Target 标识同一个逻辑对象（例如某个
// 图表叠加层）：对同一 Target 后到的请求会压掉先到的。
type Request struct {
	ID      string           `json:"id"`
	Target  string           `json:"target"`
	Kind    string           `json:"kind"`
	Params  Params           `json:"params"`
	Bars    []market.Bar     `json:"data"`
	Breadth []market.Breadth `json:"breadth,omitempty"`
}

// Response 一次请求的结果。单个请求失败只影响自己，Error 非空时
// Result 为零值。
type Response struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Result Result `json:"result"`
	Error  string `json:"error,omitempty"`
}

// Dispatcher 把批量请求派发到受限并发的工作组。被压掉的请求不会
// 产生响应（协作式取消，不抢占正在运行的计算）。
type Dispatcher struct {
	workers int

	mu      sync.Mutex
	current map[string]string // target → newest request id
}

func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{workers: workers, current: make(map[string]string)}
}

// Submit 执行一批请求并按完成情况返回响应。同批内对同一 Target 的
// 后一个请求压掉前一个；跨批的压制也生效，因为 current 表跨批保留。
func (d *Dispatcher) Submit(ctx context.Context, reqs []Request) []Response {
	for i := range reqs {
		if reqs[i].ID == "" {
			reqs[i].ID = uuid.NewString()
		}
		if reqs[i].Target == "" {
			reqs[i].Target = reqs[i].Kind
		}
	}
	d.mu.Lock()
	for _, r := range reqs {
		d.current[r.Target] = r.ID
	}
	d.mu.Unlock()

	results := make([]*Response, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i := range reqs {
		req := reqs[i]
		idx := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			resp := d.run(req)
			if resp != nil {
				results[idx] = resp
			}
			return nil
		})
	}
	g.Wait()

	out := make([]Response, 0, len(reqs))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// run executes one request. A panic inside an indicator is contained
// here so sibling computations in the batch still complete.
func (d *Dispatcher) run(req Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("compute %s (%s) panicked: %v", req.Kind, req.ID, r)
			resp = &Response{ID: req.ID, Kind: req.Kind, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	var (
		res Result
		err error
	)
	if len(req.Breadth) > 0 {
		res, err = ComputeBreadth(req.Kind, req.Breadth)
	} else {
		res, err = Compute(req.Kind, req.Bars, req.Params)
	}

	if d.superseded(req) {
		logger.Debugf("dropping superseded response %s for target %s", req.ID, req.Target)
		return nil
	}
	if err != nil {
		return &Response{ID: req.ID, Kind: req.Kind, Error: err.Error()}
	}
	return &Response{ID: req.ID, Kind: req.Kind, Result: res}
}

func (d *Dispatcher) superseded(req Request) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current[req.Target] != req.ID
}
