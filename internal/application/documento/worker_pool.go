package documento

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InformeJob names one case whose informe must be rendered.
type InformeJob struct {
	OficioID int64
	Index    int
}

// InformeResult is the outcome of rendering one informe.
type InformeResult struct {
	OficioID int64
	Index    int
	PDF      []byte
	Failed   bool
	Error    error
}

// InformeWorkerPool renders informes concurrently. Jobs fan out over a
// fixed set of workers; results come back unordered and carry the
// submission index so callers can restore order.
type InformeWorkerPool struct {
	workerCount int
	jobChan     chan InformeJob
	resultChan  chan InformeResult
	service     *Service
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewInformeWorkerPool creates a new worker pool bound to the documento
// service.
func NewInformeWorkerPool(ctx context.Context, workerCount int, service *Service) *InformeWorkerPool {
	poolCtx, cancel := context.WithCancel(ctx)

	return &InformeWorkerPool{
		workerCount: workerCount,
		jobChan:     make(chan InformeJob, workerCount*2),
		resultChan:  make(chan InformeResult, workerCount*2),
		service:     service,
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// Start starts the workers.
func (p *InformeWorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop stops the pool gracefully. In-flight jobs finish and deliver
// their results before the result channel closes.
func (p *InformeWorkerPool) Stop() {
	close(p.jobChan)
	p.wg.Wait()
	p.cancel()
	close(p.resultChan)
}

// Submit queues a job. It fails once the pool's context is cancelled.
func (p *InformeWorkerPool) Submit(job InformeJob) error {
	select {
	case p.jobChan <- job:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Results returns the channel delivering rendered informes.
func (p *InformeWorkerPool) Results() <-chan InformeResult {
	return p.resultChan
}

func (p *InformeWorkerPool) worker() {
	defer p.wg.Done()

	for job := range p.jobChan {
		result := InformeResult{OficioID: job.OficioID, Index: job.Index}

		pdf, err := p.service.GenerarInforme(p.ctx, job.OficioID)
		if err != nil {
			result.Failed = true
			result.Error = err
		} else {
			result.PDF = pdf
		}

		select {
		case p.resultChan <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

// GenerarLote renders the informes of several cases concurrently and
// returns the results in submission order. Individual failures are
// reported per case without aborting the batch.
func (s *Service) GenerarLote(ctx context.Context, oficioIDs []int64) ([]InformeResult, error) {
	if len(oficioIDs) == 0 {
		return []InformeResult{}, nil
	}
	if len(oficioIDs) > s.cfg.BatchSize {
		return nil, fmt.Errorf("el lote excede el máximo de %d oficios", s.cfg.BatchSize)
	}

	workers := s.cfg.WorkerPoolSize
	if workers > len(oficioIDs) {
		workers = len(oficioIDs)
	}

	pool := NewInformeWorkerPool(ctx, workers, s)
	pool.Start()

	go func() {
		for i, id := range oficioIDs {
			if err := pool.Submit(InformeJob{OficioID: id, Index: i}); err != nil {
				return
			}
		}
		pool.Stop()
	}()

	results := make([]InformeResult, 0, len(oficioIDs))
	for result := range pool.Results() {
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results, nil
}
