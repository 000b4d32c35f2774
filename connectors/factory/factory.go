package factory

import (
	"github.com/kilianp07/v2g-planner/auth"
	"github.com/kilianp07/v2g-planner/connectors"
	"github.com/kilianp07/v2g-planner/connectors/clients/wholesalemarket"
	corefactory "github.com/kilianp07/v2g-planner/core/factory"
)

const (
	IDWholesaleMarket = "wholesale_market"
)

var registry = corefactory.NewRegistry[connectors.PriceSource]()

func init() {
	_ = registry.Register(IDWholesaleMarket, func(conf map[string]any) (connectors.PriceSource, error) {
		var c struct {
			auth.Conf `json:",squash"`
			BaseURL   string `json:"base_url"`
		}
		if err := corefactory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if err := c.Conf.Validate(); err != nil {
			return nil, err
		}
		var opts []wholesalemarket.Option
		if c.BaseURL != "" {
			opts = append(opts, wholesalemarket.WithBaseURL(c.BaseURL))
		}
		return wholesalemarket.New(auth.NewClientCred(c.Conf), opts...), nil
	})
}

// NewPriceSource builds the price source described by cfg.
func NewPriceSource(cfg corefactory.ModuleConfig) (connectors.PriceSource, error) {
	return registry.Create(cfg)
}
