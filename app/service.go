package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/v2g-planner/api"
	"github.com/kilianp07/v2g-planner/config"
	"github.com/kilianp07/v2g-planner/connectors"
	connfactory "github.com/kilianp07/v2g-planner/connectors/factory"
	"github.com/kilianp07/v2g-planner/core/baseline"
	"github.com/kilianp07/v2g-planner/core/forecast"
	"github.com/kilianp07/v2g-planner/core/journal"
	coremetrics "github.com/kilianp07/v2g-planner/core/metrics"
	"github.com/kilianp07/v2g-planner/core/milp"
	"github.com/kilianp07/v2g-planner/core/model"
	coremon "github.com/kilianp07/v2g-planner/core/monitoring"
	coremqtt "github.com/kilianp07/v2g-planner/core/mqtt"
	"github.com/kilianp07/v2g-planner/core/plan"
	"github.com/kilianp07/v2g-planner/core/scheduler"
	"github.com/kilianp07/v2g-planner/infra/logger"
	"github.com/kilianp07/v2g-planner/infra/metrics"
	"github.com/kilianp07/v2g-planner/infra/mqtt"
	"github.com/kilianp07/v2g-planner/internal/eventbus"
)

// Request describes one planning run.
type Request struct {
	Forecast       model.Forecast
	Mode           model.Mode
	Deadline       int
	RequiredEnergy float64
	// StartHour is the wall clock hour of simulation hour 0.
	StartHour int
	DayOffset int
	// Publish sends the plan over MQTT when a publisher is configured.
	Publish bool
}

// Outcome is a solved plan with everything needed to present it.
type Outcome struct {
	Input    scheduler.Input
	Result   scheduler.Result
	Baseline baseline.Plan
	Summary  plan.Summary
	Blocks   []plan.Block
	Clock    plan.Clock
	Text     string
}

// Service wires the engine to its observers and sinks.
type Service struct {
	cfg       *config.Config
	engine    *scheduler.Engine
	bus       *eventbus.Bus[scheduler.Event]
	sink      coremetrics.MetricsSink
	store     journal.Store
	publisher coremqtt.PlanPublisher
	provider  forecast.Provider
	solver    milp.Solver
	now       func() time.Time
	log       logger.Logger

	collectorCancel context.CancelFunc
	collectorDone   <-chan struct{}
}

// Option customizes a Service, mostly for tests.
type Option func(*Service)

// WithSink replaces the sinks built from the metrics config.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// WithJournal replaces the journal built from the config.
func WithJournal(s journal.Store) Option { return func(svc *Service) { svc.store = s } }

// WithPublisher replaces the MQTT publisher.
func WithPublisher(p coremqtt.PlanPublisher) Option {
	return func(svc *Service) { svc.publisher = p }
}

// WithProvider sets the forecast source used by Run.
func WithProvider(p forecast.Provider) Option { return func(svc *Service) { svc.provider = p } }

// WithSolver replaces the solver selected by solver.algorithm.
func WithSolver(s milp.Solver) Option { return func(svc *Service) { svc.solver = s } }

// WithNow overrides the clock used to date rendered plans.
func WithNow(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{cfg: cfg, now: time.Now, log: logger.New("service")}
	for _, o := range opts {
		o(svc)
	}

	var err error
	if svc.sink == nil {
		if svc.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	if svc.store == nil && cfg.Journal.Enabled {
		if svc.store, err = journal.Open(cfg.Journal.Options()); err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
	}
	if svc.publisher == nil && cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	if svc.provider == nil && cfg.Planner.Forecast != "" {
		svc.provider = forecast.File{Path: cfg.Planner.Forecast}
	}
	if svc.provider != nil && cfg.Planner.Prices != nil {
		src, err := connfactory.NewPriceSource(*cfg.Planner.Prices)
		if err != nil {
			return nil, fmt.Errorf("price source: %w", err)
		}
		svc.provider = connectors.PriceProvider{Base: svc.provider, Source: src, Now: svc.now}
	}
	if svc.solver == nil && cfg.Solver.Algorithm == config.AlgorithmBranchAndBound {
		svc.solver = milp.NewBranchAndBound(cfg.Solver.Options())
	}

	svc.bus = eventbus.New[scheduler.Event]()
	observers := []scheduler.Observer{
		scheduler.NewLogObserver(logger.New("scheduler")),
		coremon.SolveObserver{},
		scheduler.ObserverFunc(func(_ context.Context, ev scheduler.Event) { svc.bus.Publish(ev) }),
	}
	if svc.store != nil {
		observers = append(observers, journal.NewObserver(svc.store, logger.New("journal")))
	}
	if svc.publisher != nil {
		pub := coremqtt.NewObserver(svc.publisher, logger.New("plan-publisher"))
		observers = append(observers, scheduler.ObserverFunc(func(ctx context.Context, ev scheduler.Event) {
			if publishRequested(ctx) {
				pub.ObserveSolve(ctx, ev)
			}
		}))
	}
	engineOpts := []scheduler.Option{
		scheduler.WithObserver(observers...),
		scheduler.WithTimeLimit(cfg.Solver.TimeLimit()),
	}
	if svc.solver != nil {
		engineOpts = append(engineOpts, scheduler.WithSolver(svc.solver))
	}
	svc.engine = scheduler.New(engineOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	svc.collectorCancel = cancel
	svc.collectorDone = metrics.StartEventCollector(ctx, svc.bus, svc.sink, 64)
	return svc, nil
}

type publishKey struct{}

func publishRequested(ctx context.Context) bool {
	v, _ := ctx.Value(publishKey{}).(bool)
	return v
}

// Plan solves req and prepares its presentation. Publishing failures are
// logged and do not fail the plan.
func (s *Service) Plan(ctx context.Context, req Request) (*Outcome, error) {
	if req.Publish {
		ctx = context.WithValue(ctx, publishKey{}, true)
	}
	in, err := scheduler.NewInput(req.Forecast, s.cfg.Battery, req.Mode, req.Deadline, req.RequiredEnergy)
	if err != nil {
		return nil, err
	}
	res, err := s.engine.Solve(ctx, in)
	if err != nil {
		return nil, err
	}

	base := baseline.Estimate(in.Price, in.RequiredEnergy, in.Params.MaxChargeRate)
	clock := plan.Clock{StartHour: req.StartHour, DayOffset: req.DayOffset, Today: s.now()}
	out := &Outcome{
		Input:    in,
		Result:   res,
		Baseline: base,
		Summary:  plan.Summarize(res, in.RequiredEnergy).WithBaseline(base.Cost),
		Blocks:   plan.ExtractBlocks(res, in.DeadlineHour),
		Clock:    clock,
		Text:     plan.Render(res, clock, in.DeadlineHour),
	}
	return out, nil
}

// ConfiguredRequest builds the request described by the planner section.
func (s *Service) ConfiguredRequest(f model.Forecast) (Request, error) {
	mode, err := model.ParseMode(s.cfg.Planner.Mode)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Forecast:       f,
		Mode:           mode,
		Deadline:       s.cfg.Planner.DeadlineHours,
		RequiredEnergy: s.cfg.Planner.Energy(s.cfg.Battery),
		StartHour:      f.StartHour,
		DayOffset:      s.cfg.Planner.DayOffset,
		Publish:        s.cfg.Planner.Publish,
	}, nil
}

// Run plans once per planner interval from the configured forecast until
// ctx is canceled. Failed runs are logged and retried at the next tick.
func (s *Service) Run(ctx context.Context) error {
	if s.provider == nil {
		return errors.New("planner.forecast is required to run the service")
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			defer coremon.Recover("prom-server")
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if addr := s.cfg.API.Addr; addr != "" {
		go func() {
			defer coremon.Recover("api-server")
			if err := api.Serve(ctx, addr, api.NewMux(s.APIBackends(), s.cfg.API.Token)); err != nil {
				s.log.Errorf("api server: %v", err)
			}
		}()
	}
	ticker := time.NewTicker(time.Duration(s.cfg.Planner.IntervalMinutes) * time.Minute)
	defer ticker.Stop()
	for {
		s.runOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	f, err := s.provider.Forecast(ctx)
	if err != nil {
		s.log.Errorf("forecast: %v", err)
		return
	}
	req, err := s.ConfiguredRequest(f)
	if err != nil {
		s.log.Errorf("planner config: %v", err)
		return
	}
	out, err := s.Plan(ctx, req)
	if err != nil {
		s.log.Warnf("plan: %v", err)
		return
	}
	s.log.Infof("planned %d hours, net cost %.2f, baseline %.2f", out.Result.Horizon, out.Result.NetCost, out.Baseline.Cost)
}

// APIBackends returns the stores served by the HTTP API. KPIs are only
// available when an eco metrics sink is configured.
func (s *Service) APIBackends() api.Backends {
	b := api.Backends{Journal: s.store}
	if e := metrics.FindEcoSink(s.sink); e != nil {
		b.KPIs = e.Store()
		b.EmissionFactor = e.Factor()
	}
	return b
}

// Journal returns the configured solve journal, nil when disabled.
func (s *Service) Journal() journal.Store { return s.store }

// Close stops the metrics collector and releases sinks, journal and broker
// connection.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collectorDone
	s.collectorCancel()

	errs := []error{coremetrics.CloseSink(s.sink)}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if p, ok := s.publisher.(*mqtt.PahoPublisher); ok {
		p.Disconnect()
	}
	return errors.Join(errs...)
}
