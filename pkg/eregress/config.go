package eregress

import(
	"errors"
	"fmt"
)

var ErrBadConfig = errors.New("invalid regression config")

type Config struct {
	PolynomialDegree int     `yaml:"polynomial_degree"`
	UseRidge         bool    `yaml:"use_ridge"`
	RidgeAlpha       float64 `yaml:"ridge_alpha"`
	KFolds           int     `yaml:"k_folds"`
}

func DefaultConfig() Config {
	return Config{
		PolynomialDegree: 2,
		UseRidge:         true,
		RidgeAlpha:       1.0,
		KFolds:           5,
	}
}

func (c Config)String() string {
	s := fmt.Sprintf("degree=%d, k=%d", c.PolynomialDegree, c.KFolds)
	if c.UseRidge {
		s += fmt.Sprintf(", ridge(alpha=%g)", c.RidgeAlpha)
	}
	return s
}

func (c Config)Validate() error {
	if c.PolynomialDegree < 1 {
		return fmt.Errorf("polynomial_degree %d, must be >=1: %w", c.PolynomialDegree, ErrBadConfig)
	}
	if c.RidgeAlpha < 0 {
		return fmt.Errorf("ridge_alpha %g, must be >=0: %w", c.RidgeAlpha, ErrBadConfig)
	}
	if c.KFolds < 2 {
		return fmt.Errorf("k_folds %d, must be >=2: %w", c.KFolds, ErrBadConfig)
	}
	return nil
}

// alpha is the penalty actually applied.
func (c Config)alpha() float64 {
	if c.UseRidge {
		return c.RidgeAlpha
	}
	return 0
}
