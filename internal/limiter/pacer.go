package limiter

import (
	"context"
	"sync"
	"time"
)

// SleepFunc ngủ trong d hoặc tới khi ctx bị huỷ
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pacer giữ khoảng nghỉ cố định giữa các request tới site.
// Các lần crawl chạy tuần tự nên chỉ cần một khoảng chờ, không cần cửa sổ trượt.
type Pacer struct {
	mu    sync.Mutex
	sleep SleepFunc
	waits int
	slept time.Duration
}

func NewPacer() *Pacer {
	return &Pacer{sleep: sleepContext}
}

// NewPacerWith dùng hàm sleep tuỳ chỉnh, chủ yếu cho test
func NewPacerWith(sleep SleepFunc) *Pacer {
	return &Pacer{sleep: sleep}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait chờ d. d <= 0 thì chỉ kiểm tra ctx.
func (p *Pacer) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	p.mu.Lock()
	p.waits++
	p.slept += d
	sleep := p.sleep
	p.mu.Unlock()

	if sleep == nil {
		sleep = sleepContext
	}
	return sleep(ctx, d)
}

// Stats trả về số lần chờ và tổng thời gian đã chờ
func (p *Pacer) Stats() (int, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waits, p.slept
}
