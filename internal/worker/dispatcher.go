package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/qs3c/leadcrm_go_server/internal/model"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/analysiswebhook"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/pubsub"
	"github.com/qs3c/leadcrm_go_server/internal/pkg/queue"
	"github.com/qs3c/leadcrm_go_server/internal/repository"
)

const (
	popTimeout = 5 * time.Second

	staleSweepInterval = 10 * time.Minute
	staleAfter         = 2 * time.Hour
	staleSweepBatch    = 100
)

// Dispatcher 消费分析任务队列，把录音投递给外部分析服务。
// 投出去就算这条任务结束，分析结果等对方回调。
type Dispatcher struct {
	queue        *queue.Queue
	webhook      *analysiswebhook.Client
	analysisRepo *repository.AnalysisRepository
	publisher    *pubsub.Publisher
	workers      int
}

func NewDispatcher(q *queue.Queue, webhook *analysiswebhook.Client, analysisRepo *repository.AnalysisRepository, publisher *pubsub.Publisher, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{
		queue:        q,
		webhook:      webhook,
		analysisRepo: analysisRepo,
		publisher:    publisher,
		workers:      workers,
	}
}

// Run 启动消费循环，阻塞到 ctx 取消
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.loop(ctx, id)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.staleLoop(ctx)
	}()
	wg.Wait()
}

// staleLoop 定期把长时间停在 processing 的分析置为失败。
// 外部服务回调丢了的话，这些记录会一直卡着挡住重试。
func (d *Dispatcher) staleLoop(ctx context.Context) {
	ticker := time.NewTicker(staleSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.SweepStale(ctx, time.Now().Add(-staleAfter))
		}
	}
}

// SweepStale 把 olderThan 之前就停在 processing 的分析标记为失败
func (d *Dispatcher) SweepStale(ctx context.Context, olderThan time.Time) {
	analyses, err := d.analysisRepo.ListStale(olderThan, staleSweepBatch)
	if err != nil {
		log.Printf("list stale analyses error: %v", err)
		return
	}
	for _, a := range analyses {
		log.Printf("analysis %d stale since %s, marking failed", a.ID, a.UpdatedAt.Format(time.RFC3339))
		d.markFailed(ctx, &queue.DispatchMessage{
			AnalysisID:  a.ID,
			RecordingID: a.RecordingID,
			CallID:      a.CallID,
			CompanyID:   a.CompanyID,
			UserID:      a.SubmittedBy,
		}, "分析超时，未收到结果回调")
	}
}

func (d *Dispatcher) loop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := d.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker %d: pop error: %v", id, err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue
		}

		d.Handle(ctx, msg)
	}
}

// Handle 处理一条投递任务
func (d *Dispatcher) Handle(ctx context.Context, msg *queue.DispatchMessage) {
	validated, method := d.webhook.ValidateURL(ctx, msg.RecordingURL)
	if !validated {
		// 探测失败不拦截，外部服务自己会再试一次拉取
		log.Printf("recording url not reachable, dispatching anyway: analysis=%d", msg.AnalysisID)
	}

	payload := &analysiswebhook.Payload{
		URL:              msg.RecordingURL,
		Name:             msg.LeadName,
		RecordingID:      msg.RecordingID,
		AnalysisID:       msg.AnalysisID,
		UserID:           msg.UserID,
		CallID:           msg.CallID,
		URLValidated:     validated,
		ValidationMethod: method,
	}

	if err := d.webhook.Dispatch(ctx, payload); err != nil {
		log.Printf("dispatch analysis %d failed: %v", msg.AnalysisID, err)
		d.markFailed(ctx, msg, "投递到分析服务失败")
		return
	}

	log.Printf("dispatched analysis %d (call %d, validated=%v via %s)",
		msg.AnalysisID, msg.CallID, validated, method)
}

func (d *Dispatcher) markFailed(ctx context.Context, msg *queue.DispatchMessage, reason string) {
	if err := d.analysisRepo.UpdateFields(msg.AnalysisID, map[string]interface{}{
		"status":        model.AnalysisStatusFailed,
		"error_message": reason,
	}); err != nil {
		log.Printf("mark analysis %d failed error: %v", msg.AnalysisID, err)
	}
	if err := d.analysisRepo.UpdateRecordingFields(msg.RecordingID, map[string]interface{}{
		"status":        model.AnalysisStatusFailed,
		"error_message": reason,
	}); err != nil {
		log.Printf("mark recording %d failed error: %v", msg.RecordingID, err)
	}

	if d.publisher == nil {
		return
	}
	err := d.publisher.PublishStatus(ctx, &pubsub.StatusMessage{
		UserID:     msg.UserID,
		CompanyID:  msg.CompanyID,
		AnalysisID: msg.AnalysisID,
		CallID:     msg.CallID,
		Status:     model.AnalysisStatusFailed,
		Error:      reason,
	})
	if err != nil {
		log.Printf("publish failed status error: %v", err)
	}
}
