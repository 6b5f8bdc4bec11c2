package paymentgateway

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	errors "github.com/boostify/storefront/internal"
	"github.com/google/uuid"
)

type callbackJob struct {
	TransactionID string
	GatewayRef    string
	Amount        int64
}

type worker struct {
	ID         int
	WorkerPool chan chan callbackJob
	JobChannel chan callbackJob
	Logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan callbackJob, logger *slog.Logger) *worker {
	return &worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan callbackJob),
		Logger:     logger,
	}
}

func (w *worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(callbackJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("simulator processing job", "worker_id", w.ID, "transaction_id", job.TransactionID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("simulator worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Mock simulates the external gateway for development and end-to-end checks.
// CreateIntent hands back a local pay-page URL and queues a simulated outcome;
// a worker pool later delivers the success/failure callback to the configured
// webhook URL, the same way the real gateway would.
type Mock struct {
	webhookURL string
	timeout    time.Duration
	logger     *slog.Logger

	jobQueue   chan callbackJob
	workerPool chan chan callbackJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewMock(cfg Config, logger *slog.Logger) *Mock {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	jobQueueSize := cfg.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}

	workerPoolSize := cfg.WorkerPoolSize
	if workerPoolSize <= 0 {
		workerPoolSize = maxWorkers
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	m := &Mock{
		webhookURL: cfg.WebhookURL,
		timeout:    timeout,
		logger:     logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan callbackJob, jobQueueSize),
		workerPool: make(chan chan callbackJob, workerPoolSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	m.startWorkerPool()

	return m
}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) startWorkerPool() {
	m.once.Do(func() {
		for i := 0; i < m.maxWorkers; i++ {
			w := newWorker(i, m.workerPool, m.logger)
			w.Start(m.ctx, &m.wg, m.processCallbackJob)
		}

		go m.dispatch()

		m.logger.Info("mock gateway worker pool started",
			"max_workers", m.maxWorkers,
			"queue_size", cap(m.jobQueue))
	})
}

func (m *Mock) dispatch() {
	m.wg.Add(1)
	defer m.wg.Done()

	for {
		select {
		case job := <-m.jobQueue:
			select {
			case jobChannel := <-m.workerPool:
				select {
				case jobChannel <- job:
				case <-m.ctx.Done():
					m.logger.Info("simulator dispatcher shutting down")
					return
				}
			case <-m.ctx.Done():
				m.logger.Info("simulator dispatcher shutting down")
				return
			}
		case <-m.ctx.Done():
			m.logger.Info("simulator dispatcher shutting down")
			return
		}
	}
}

func (m *Mock) Shutdown() {
	m.logger.Info("shutting down mock gateway")
	m.cancel()
	m.wg.Wait()
	m.logger.Info("mock gateway shutdown complete")
}

func (m *Mock) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	gatewayRef := "mock_" + uuid.NewString()

	intent := &Intent{
		RedirectURL: fmt.Sprintf("%s/mock-pay?txId=%s&refId=%s",
			m.webhookBase(), url.QueryEscape(req.TransactionID), url.QueryEscape(gatewayRef)),
		GatewayRef: gatewayRef,
	}

	job := callbackJob{
		TransactionID: req.TransactionID,
		GatewayRef:    gatewayRef,
		Amount:        req.Amount,
	}

	select {
	case m.jobQueue <- job:
		m.logger.Info("mock gateway: simulated payment queued",
			"transaction_id", req.TransactionID,
			"gateway_ref", gatewayRef,
			"queue_length", len(m.jobQueue))
	default:
		m.logger.Warn("mock gateway: job queue full, rejecting intent",
			"transaction_id", req.TransactionID,
			"queue_capacity", cap(m.jobQueue))
		return nil, fmt.Errorf("payment queue full, please try again later")
	}

	return intent, nil
}

func (m *Mock) SendPayout(ctx context.Context, req PayoutRequest) (*PayoutResult, error) {
	if req.Recipient == FailureSimRecipient {
		m.logger.Info("mock gateway: payout rejected for failure-simulation recipient",
			"recipient", req.Recipient, "amount", req.Amount)
		return nil, errors.NewValidationError("payout recipient rejected by gateway", errors.ErrCodePayoutRejected)
	}

	return &PayoutResult{
		Reference: "mock_payout_" + uuid.NewString(),
		SentAt:    time.Now(),
	}, nil
}

func (m *Mock) processCallbackJob(job callbackJob) {
	delay := time.Duration(1+rand.Intn(4)) * time.Second

	select {
	case <-time.After(delay):
	case <-m.ctx.Done():
		m.logger.Info("simulated payment cancelled", "transaction_id", job.TransactionID)
		return
	}

	status := "success"
	if rand.Float32() >= 0.9 {
		status = "failed"
	}

	m.logger.Info("mock gateway: simulated payment settled",
		"transaction_id", job.TransactionID,
		"status", status,
		"delay_seconds", delay.Seconds())

	m.deliverCallback(job, status)
}

func (m *Mock) deliverCallback(job callbackJob, status string) {
	select {
	case <-m.ctx.Done():
		m.logger.Info("callback delivery cancelled", "transaction_id", job.TransactionID)
		return
	default:
	}

	if m.webhookURL == "" {
		m.logger.Warn("mock gateway: no webhook URL configured, dropping callback",
			"transaction_id", job.TransactionID)
		return
	}

	callbackURL := fmt.Sprintf("%s?txId=%s&refId=%s&status=%s",
		m.webhookURL,
		url.QueryEscape(job.TransactionID),
		url.QueryEscape(job.GatewayRef),
		url.QueryEscape(status))

	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callbackURL, nil)
	if err != nil {
		m.logger.Error("mock gateway: failed to build callback request",
			"error", err, "transaction_id", job.TransactionID)
		return
	}

	client := &http.Client{Timeout: m.timeout}
	resp, err := client.Do(req)
	if err != nil {
		m.logger.Error("mock gateway: callback delivery failed",
			"error", err, "transaction_id", job.TransactionID)
		return
	}
	defer resp.Body.Close()

	m.logger.Info("mock gateway: callback delivered",
		"transaction_id", job.TransactionID,
		"status", status,
		"http_status", resp.StatusCode)
}

func (m *Mock) webhookBase() string {
	if u, err := url.Parse(m.webhookURL); err == nil && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return ""
}
