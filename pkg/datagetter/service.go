package datagetter

import (
	"context"

	"github.com/google/uuid"

	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/telemetry"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

// Resolution statuses recorded in metrics.
const (
	statusOK           = "ok"
	statusStoreError   = "store_error"
	statusInvalidInput = "invalid_input"
)

// Service resolves the data getters of pages against one store.
type Service struct {
	store    graph.Store
	registry *Registry
	namer    vocab.Namer
	tel      *telemetry.Telemetry
	logger   *telemetry.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRegistry sets the implementation registry. Defaults to DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithNamer sets the naming convention. Defaults to vocab.LocalNamer.
func WithNamer(n vocab.Namer) Option {
	return func(s *Service) { s.namer = n }
}

// WithTelemetry sets the logger, tracer and metrics.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(s *Service) { s.tel = t }
}

// NewService creates a Service reading from store.
func NewService(store graph.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: DefaultRegistry(),
		namer:    vocab.LocalNamer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tel == nil {
		s.tel = telemetry.NewNopTelemetry()
	}
	s.logger = s.tel.Logger.NewComponentLogger("datagetter")
	return s
}

// Store returns the store the service reads from.
func (s *Service) Store() graph.Store {
	return s.store
}

// Registry returns the registry the service builds from.
func (s *Service) Registry() *Registry {
	return s.registry
}

func (s *Service) resolver(logger *telemetry.Logger) resolver {
	return resolver{registry: s.registry, namer: s.namer, logger: logger}
}

// LinksForPage returns the data getter URIs attached to pageURI.
func (s *Service) LinksForPage(ctx context.Context, pageURI string) ([]string, error) {
	return LinksForPage(ctx, s.store, pageURI)
}

// ImplementationFor returns the implementation name of a data getter.
func (s *Service) ImplementationFor(ctx context.Context, dataGetterURI string) (string, error) {
	return s.resolver(s.logger).implementationFor(ctx, s.store, dataGetterURI)
}

// Instantiate builds a data getter from the named implementation.
func (s *Service) Instantiate(ctx context.Context, dataGetterURI, implName string) (DataGetter, error) {
	return s.resolver(s.logger).instantiate(ctx, s.store, dataGetterURI, implName)
}

// Link is the outcome of resolving one data getter link.
type Link struct {
	URI            string     `json:"uri"`
	Implementation string     `json:"implementation,omitempty"`
	Getter         DataGetter `json:"-"`

	// Skipped is set when the link produced no data getter. Reason is the
	// error kind, or "capability_mismatch" for implementations that are not
	// data getters.
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Resolution is the outcome of resolving every link of a page.
type Resolution struct {
	ID      string `json:"id"`
	PageURI string `json:"page_uri"`
	Links   []Link `json:"links"`
}

// Getters returns the resolved data getters in link order.
func (r *Resolution) Getters() []DataGetter {
	getters := make([]DataGetter, 0, len(r.Links))
	for _, l := range r.Links {
		if l.Getter != nil {
			getters = append(getters, l.Getter)
		}
	}
	return getters
}

// DataGettersForPage returns fresh data getters for every usable link of
// pageURI, in link order. Links that cannot be resolved are skipped; store
// failures abort the whole call.
func (s *Service) DataGettersForPage(ctx context.Context, pageURI string) ([]DataGetter, error) {
	res, err := s.Resolve(ctx, pageURI)
	if err != nil {
		return nil, err
	}
	return res.Getters(), nil
}

// Resolve resolves every link of pageURI and reports per-link outcomes.
func (s *Service) Resolve(ctx context.Context, pageURI string) (res *Resolution, err error) {
	id := uuid.NewString()
	timer := telemetry.NewTimer()
	logger := s.logger.WithResolutionID(id).WithPageURI(pageURI)

	ctx, span := s.tel.Tracer.StartPageSpan(ctx, pageURI, id)
	defer func() {
		status := statusOK
		switch {
		case IsStoreAccess(err):
			status = statusStoreError
		case err != nil:
			status = statusInvalidInput
		}
		s.tel.Metrics.RecordPageResolution(status, timer.Duration())

		if err != nil {
			span.SetAttributes(telemetry.AttrErrorKind.String(string(KindOf(err))))
			telemetry.RecordError(span, err)
		} else {
			span.SetAttributes(
				telemetry.AttrLinkCount.Int(len(res.Links)),
				telemetry.AttrGetterCount.Int(len(res.Getters())),
			)
			telemetry.RecordSuccess(span)
		}
		span.End()
	}()

	links, err := LinksForPage(ctx, s.store, pageURI)
	if err != nil {
		logger.WithError(err).Error("failed to enumerate data getters")
		return nil, err
	}
	s.tel.Metrics.RecordLinksEnumerated(len(links))

	res = &Resolution{ID: id, PageURI: pageURI, Links: make([]Link, 0, len(links))}
	for _, uri := range links {
		link, err := s.resolveLink(ctx, logger.WithDataGetterURI(uri), uri)
		if err != nil {
			logger.WithError(err).Error("failed to resolve data getters")
			return nil, err
		}
		res.Links = append(res.Links, link)
	}

	logger.Debugf("resolved %d of %d data getters", len(res.Getters()), len(links))
	return res, nil
}

// resolveLink resolves one link. It only returns an error when the
// resolution must be aborted; per-link failures are reported in Link.
func (s *Service) resolveLink(ctx context.Context, logger *telemetry.Logger, uri string) (Link, error) {
	ctx, span := s.tel.Tracer.StartLinkSpan(ctx, uri)
	defer span.End()

	link := Link{URI: uri}
	r := s.resolver(logger)

	name, err := r.implementationFor(ctx, s.store, uri)
	if err == nil {
		link.Implementation = name
		span.SetAttributes(telemetry.AttrImplementation.String(name))

		var dg DataGetter
		dg, err = r.instantiate(ctx, s.store, uri, name)
		if err == nil && dg == nil {
			link.Skipped = true
			link.Reason = telemetry.SkipCapabilityMismatch
			s.tel.Metrics.RecordLinkSkipped(link.Reason)
			span.AddEvent("capability mismatch")
			return link, nil
		}
		link.Getter = dg
	}

	if err != nil {
		if !IsLinkError(err) {
			telemetry.RecordError(span, err)
			return Link{}, err
		}
		link.Skipped = true
		link.Reason = string(KindOf(err))
		link.Error = err.Error()
		s.tel.Metrics.RecordLinkSkipped(link.Reason)
		span.SetAttributes(telemetry.AttrErrorKind.String(link.Reason))
		telemetry.AddEvent(span, "link skipped", telemetry.AttrErrorKind.String(link.Reason))
		logger.WithError(err).Warn("skipping data getter")
		return link, nil
	}

	s.tel.Metrics.RecordGetterResolved(name)
	telemetry.RecordSuccess(span)
	return link, nil
}

// PageData resolves the data getters of pageURI, runs each one and merges
// their output in link order; later getters overwrite earlier keys. A getter
// that fails is logged and left out.
func (s *Service) PageData(ctx context.Context, pageURI string, pageData map[string]any) (map[string]any, error) {
	res, err := s.Resolve(ctx, pageURI)
	if err != nil {
		return nil, err
	}

	logger := s.logger.WithResolutionID(res.ID).WithPageURI(pageURI)
	merged := make(map[string]any)
	for _, link := range res.Links {
		if link.Getter == nil {
			continue
		}
		data, err := link.Getter.GetData(ctx, pageData)
		if err != nil {
			s.tel.Metrics.RecordGetterError(link.Implementation)
			logger.WithDataGetterURI(link.URI).WithImplementation(link.Implementation).
				WithError(err).Warn("data getter failed")
			continue
		}
		for k, v := range data {
			merged[k] = v
		}
	}
	return merged, nil
}

// DataGettersForPage resolves the data getters of pageURI with the default
// registry and naming convention. Telemetry attached to ctx is used when
// present.
func DataGettersForPage(ctx context.Context, store graph.Store, pageURI string) ([]DataGetter, error) {
	tel := telemetry.FromTelemetryContext(ctx)
	if tel == nil {
		tel = telemetry.NewNopTelemetry()
		tel.Logger = telemetry.FromContext(ctx)
	}
	return NewService(store, WithTelemetry(tel)).DataGettersForPage(ctx, pageURI)
}
