package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig carries the monetary constants of the ledger. These
// have changed between product iterations, so they are configuration,
// not literals.
type BillingConfig struct {
	CommissionRate     float64            `mapstructure:"commissionRate"`
	MilestoneThreshold int                `mapstructure:"milestoneThreshold"`
	MilestoneBonus     float64            `mapstructure:"milestoneBonus"`
	FameBoosterPrice   float64            `mapstructure:"fameBoosterPrice"`
	PreventDowngrade   bool               `mapstructure:"preventDowngrade"`
	PlanPrices         map[string]float64 `mapstructure:"planPrices"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		CommissionRate:     0.70,
		MilestoneThreshold: 100,
		MilestoneBonus:     500,
		FameBoosterPrice:   9.0,
		PreventDowngrade:   false,
		PlanPrices: map[string]float64{
			"Pro":       19,
			"Diamond":   49,
			"Cinematic": 99,
			"Lifetime":  500,
		},
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/kairah/config") // Volume-mounted config
	v.AddConfigPath("/etc/kairah")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("KAIRAH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.commissionRate", defaults.CommissionRate)
	v.SetDefault("billing.milestoneThreshold", defaults.MilestoneThreshold)
	v.SetDefault("billing.milestoneBonus", defaults.MilestoneBonus)
	v.SetDefault("billing.fameBoosterPrice", defaults.FameBoosterPrice)
	v.SetDefault("billing.preventDowngrade", defaults.PreventDowngrade)
	v.SetDefault("billing.planPrices", defaults.PlanPrices)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder returns a holder pinned to cfg, for tests.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.CommissionRate <= 0 || cfg.CommissionRate > 1 {
		return errors.New("billing.commissionRate must be in (0, 1]")
	}
	if cfg.MilestoneThreshold <= 0 {
		return errors.New("billing.milestoneThreshold must be positive")
	}
	if cfg.MilestoneBonus < 0 {
		return errors.New("billing.milestoneBonus cannot be negative")
	}
	if cfg.FameBoosterPrice < 0 {
		return errors.New("billing.fameBoosterPrice cannot be negative")
	}
	return nil
}
