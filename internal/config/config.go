// Package config provides configuration loading for lpdeploy.
//
// Values come from, in increasing priority: defaults, an optional lpdeploy.yaml,
// a .env file, the process environment and command-line flags. NETWORK,
// URL_MAIN and URL_TEST are read without a prefix. Every other variable uses
// the LPDEPLOY_ prefix.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	lperrors "github.com/ace-smart/liquidity-pool-factory/internal/pkg/errors"
	"github.com/ace-smart/liquidity-pool-factory/internal/registry"
)

// Default addresses and paths.
const (
	DefaultDeployerAddress = "0x89352214a56bA80547A2842bbE21AEdD315722Ca"
	DefaultStakingAddress  = "0x812Db49B5e44A079D128Fb636671b1E5A5422e81"
	DefaultArtifactPath    = "artifacts/contracts/LiquidityPoolFactory.sol/LiquidityPoolFactory.json"
)

// Config holds all configuration for a run.
type Config struct {
	Network string `mapstructure:"network" validate:"oneof=mainnet testnet"`
	URLMain string `mapstructure:"url_main" validate:"omitempty,url"`
	URLTest string `mapstructure:"url_test" validate:"omitempty,url"`

	Deployer DeployerConfig `mapstructure:"deployer"`
	Deploy   DeployConfig   `mapstructure:"deploy"`
	Staking  StakingConfig  `mapstructure:"staking"`
	Gas      GasConfig      `mapstructure:"gas"`
	Log      LogConfig      `mapstructure:"log"`

	RegistryFile string `mapstructure:"registry_file"`
}

// DeployerConfig selects the signing account and where its key comes from.
type DeployerConfig struct {
	Address          string   `mapstructure:"address" validate:"required,eth_addr"`
	PrivateKeys      []string `mapstructure:"private_keys"`
	KeystoreDir      string   `mapstructure:"keystore_dir"`
	KeystorePassword string   `mapstructure:"keystore_password"`
}

// DeployConfig controls the factory deployment step.
type DeployConfig struct {
	Redeploy     bool          `mapstructure:"redeploy"`
	DryRun       bool          `mapstructure:"dry_run"`
	AssumeYes    bool          `mapstructure:"assume_yes"`
	ArtifactPath string        `mapstructure:"artifact_path"`
	ChainID      uint64        `mapstructure:"chain_id"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// StakingConfig controls the optional staking inspection step.
type StakingConfig struct {
	Inspect bool   `mapstructure:"inspect"`
	Address string `mapstructure:"address" validate:"omitempty,eth_addr"`
}

// GasConfig holds optional gas overrides. Zero values mean "ask the node".
type GasConfig struct {
	Limit       uint64 `mapstructure:"limit"`
	Price       string `mapstructure:"price"`
	BumpPercent uint64 `mapstructure:"bump_percent" validate:"lte=500"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"network":         "network",
	"deployer":        "deployer.address",
	"keystore":        "deployer.keystore_dir",
	"redeploy":        "deploy.redeploy",
	"dry-run":         "deploy.dry_run",
	"yes":             "deploy.assume_yes",
	"artifact":        "deploy.artifact_path",
	"chain-id":        "deploy.chain_id",
	"timeout":         "deploy.timeout",
	"inspect-staking": "staking.inspect",
	"staking-address": "staking.address",
	"gas-limit":       "gas.limit",
	"gas-price":       "gas.price",
	"gas-bump":        "gas.bump_percent",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"registry":        "registry_file",
}

// Load reads configuration from .env, files, environment variables and the
// given flags, which may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("lpdeploy")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LPDEPLOY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Shared with the Hardhat tooling, so unprefixed.
	v.BindEnv("network", "NETWORK")
	v.BindEnv("url_main", "URL_MAIN")
	v.BindEnv("url_test", "URL_TEST")

	// Nested keys are not picked up by AutomaticEnv during Unmarshal.
	v.BindEnv("deployer.address", "LPDEPLOY_DEPLOYER_ADDRESS")
	v.BindEnv("deployer.private_keys", "LPDEPLOY_PRIVATE_KEYS")
	v.BindEnv("deployer.keystore_dir", "LPDEPLOY_KEYSTORE_DIR")
	v.BindEnv("deployer.keystore_password", "LPDEPLOY_KEYSTORE_PASSWORD")
	v.BindEnv("deploy.redeploy", "LPDEPLOY_REDEPLOY")
	v.BindEnv("deploy.dry_run", "LPDEPLOY_DRY_RUN")
	v.BindEnv("deploy.artifact_path", "LPDEPLOY_ARTIFACT_PATH")
	v.BindEnv("deploy.chain_id", "LPDEPLOY_CHAIN_ID")
	v.BindEnv("staking.inspect", "LPDEPLOY_INSPECT_STAKING")
	v.BindEnv("staking.address", "LPDEPLOY_STAKING_ADDRESS")
	v.BindEnv("log.level", "LPDEPLOY_LOG_LEVEL")
	v.BindEnv("log.format", "LPDEPLOY_LOG_FORMAT")
	v.BindEnv("registry_file", "LPDEPLOY_REGISTRY_FILE")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, lperrors.Configuration("bind flag", err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, lperrors.Configuration("read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, lperrors.Configuration("unmarshal config", err)
	}

	network, err := registry.ParseNetwork(cfg.Network)
	if err != nil {
		return nil, err
	}
	cfg.Network = network.String()

	return &cfg, nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network", "testnet")

	v.SetDefault("deployer.address", DefaultDeployerAddress)

	v.SetDefault("deploy.redeploy", true)
	v.SetDefault("deploy.dry_run", false)
	v.SetDefault("deploy.assume_yes", false)
	v.SetDefault("deploy.artifact_path", DefaultArtifactPath)
	v.SetDefault("deploy.chain_id", 0)
	v.SetDefault("deploy.timeout", "10m")

	v.SetDefault("staking.inspect", false)
	v.SetDefault("staking.address", DefaultStakingAddress)

	v.SetDefault("gas.limit", 0)
	v.SetDefault("gas.price", "")
	v.SetDefault("gas.bump_percent", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("registry_file", "")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field formats and that the selected network has an RPC URL.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return lperrors.New(lperrors.ErrConfiguration, "validate config",
				"%s: failed %q check (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return lperrors.Configuration("validate config", err)
	}
	if c.RPCURL() == "" {
		env := "URL_TEST"
		if c.NetworkName() == registry.Mainnet {
			env = "URL_MAIN"
		}
		return lperrors.New(lperrors.ErrConfiguration, "validate config",
			"no RPC endpoint for %s: set %s", c.Network, env)
	}
	return nil
}

// NetworkName returns the selected network.
func (c *Config) NetworkName() registry.Network {
	return registry.Network(c.Network)
}

// RPCURL returns the endpoint of the selected network.
func (c *Config) RPCURL() string {
	if c.NetworkName() == registry.Mainnet {
		return c.URLMain
	}
	return c.URLTest
}

// String renders the config for debug logs with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("network=%s rpc=%s deployer=%s keys=%d keystore=%q redeploy=%t dry_run=%t inspect_staking=%t",
		c.Network, redactURL(c.RPCURL()), c.Deployer.Address, len(c.Deployer.PrivateKeys), c.Deployer.KeystoreDir,
		c.Deploy.Redeploy, c.Deploy.DryRun, c.Staking.Inspect)
}

// redactURL keeps only scheme and host.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
