package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-loyalty-api/internal/interfaces"
)

// OrderEventKind işlenecek sipariş olayının türü
type OrderEventKind string

const (
	EventOrderCompleted OrderEventKind = "order_completed"
	EventOrderCancelled OrderEventKind = "order_cancelled"
)

// OrderEventJob queue'da işlenecek sipariş olayı
type OrderEventJob struct {
	Kind       OrderEventKind
	OrderID    string
	ResultChan chan OrderEventResult
}

// OrderEventResult job sonucu
type OrderEventResult struct {
	Error error
}

// OrderEventQueue webhook'tan gelen sipariş olaylarını worker havuzunda işler
// HTTP handler'ı ledger yazımını beklemeden cevap dönebilsin diye vardır;
// adaptör idempotent olduğu için olayın iki kez işlenmesi zararsızdır
type OrderEventQueue struct {
	jobChan      chan OrderEventJob
	workers      int
	bufferSize   int
	wg           sync.WaitGroup
	orderService interfaces.OrderServiceInterface
}

// NewOrderEventQueue yeni queue oluşturur
func NewOrderEventQueue(workers int, orderService interfaces.OrderServiceInterface, bufferSize int) *OrderEventQueue {
	return &OrderEventQueue{
		jobChan:      make(chan OrderEventJob, bufferSize),
		workers:      workers,
		bufferSize:   bufferSize,
		orderService: orderService,
	}
}

// Start worker'ları başlatır
func (q *OrderEventQueue) Start() {
	log.Info().
		Int("workers", q.workers).
		Int("buffer_size", q.bufferSize).
		Msg("🔄 Sipariş olay queue'su başlatıldı")

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop queue'yu durdurur, bekleyen job'lar işlenene kadar bekler
func (q *OrderEventQueue) Stop() {
	close(q.jobChan)
	q.wg.Wait()
	log.Info().Msg("⏹️ Sipariş olay queue'su durduruldu")
}

// worker tek bir worker'ın işlem yapması
func (q *OrderEventQueue) worker(id int) {
	defer q.wg.Done()

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("recover", r).
				Int("worker_id", id).
				Msg("🚨 Worker panikledi ama toparlandı")
		}
	}()

	log.Info().Int("worker_id", id).Msg("🚀 Worker başlatıldı")

	for job := range q.jobChan {
		log.Debug().
			Int("worker_id", id).
			Str("kind", string(job.Kind)).
			Str("order_id", job.OrderID).
			Msg("💼 Sipariş olayı işleniyor")

		var err error
		switch job.Kind {
		case EventOrderCompleted:
			err = q.orderService.OnOrderCompleted(job.OrderID)
		case EventOrderCancelled:
			err = q.orderService.OnOrderCancelled(job.OrderID)
		default:
			err = fmt.Errorf("bilinmeyen olay türü: %s", job.Kind)
		}

		job.ResultChan <- OrderEventResult{Error: err}
		close(job.ResultChan)

		if err != nil {
			log.Error().Err(err).Int("worker_id", id).Str("order_id", job.OrderID).Msg("❌ Sipariş olayı başarısız")
		} else {
			log.Info().Int("worker_id", id).Str("order_id", job.OrderID).Msg("✅ Sipariş olayı işlendi")
		}
	}

	log.Info().Int("worker_id", id).Msg("🛑 Worker durduruldu")
}

// AddJob queue'ya yeni olay ekler; queue doluysa hata döner
func (q *OrderEventQueue) AddJob(kind OrderEventKind, orderID string) <-chan OrderEventResult {
	resultChan := make(chan OrderEventResult, 1)

	job := OrderEventJob{
		Kind:       kind,
		OrderID:    orderID,
		ResultChan: resultChan,
	}

	select {
	case q.jobChan <- job:
		log.Debug().Str("order_id", orderID).Msg("📤 Olay queue'ya eklendi")
	default:
		go func() {
			resultChan <- OrderEventResult{
				Error: fmt.Errorf("olay queue'su dolu, daha sonra tekrar deneyin"),
			}
			close(resultChan)
		}()
	}

	return resultChan
}
