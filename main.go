package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/paperlex/paperlex/agent"
	"github.com/paperlex/paperlex/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	cfg config.Config
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("storage-impl", "memory", "implementation of underline storage (redis|memory)")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "paperlex", "namespace used in storage")
	cmd.Flags().String("paperless-url", "http://localhost:8000", "paperless-ngx base url")
	cmd.Flags().String("paperless-token", "", "paperless-ngx api token")
	cmd.Flags().Float64("paperless-rate", 0, "paperless sustained request rate per second, 0 for unconstrained")
	cmd.Flags().Int("paperless-burst", 1, "paperless rate limiter burst size")
	cmd.Flags().String("lexoffice-url", "https://api.lexware.io", "lexoffice base url")
	cmd.Flags().String("lexoffice-key", "", "lexoffice api key")
	cmd.Flags().Float64("lexoffice-rate", 2, "lexoffice sustained request rate per second")
	cmd.Flags().Int("lexoffice-burst", 2, "lexoffice rate limiter burst size")
	cmd.Flags().Int("queue-capacity", 512, "event dispatch queue capacity")
	cmd.Flags().Uint64("retry-max-tries", 4, "max attempts per connector call")
	cmd.Flags().Int("exec-timeout", 120, "workflow execution deadline in seconds")
	cmd.Flags().String("sync-cron", "*/15 * * * *", "contact reconciliation cadence")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	viper.SetConfigFile(configFile)

	if err = viper.ReadInConfig(); err != nil {
		// it's ok if config file doesn't exist
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return err
		}
	}

	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.Paperless = config.ConnectorConfig{
		BaseUrl:    viper.GetString("paperless-url"),
		Credential: viper.GetString("paperless-token"),
		Active:     viper.GetString("paperless-token") != "",
		Rate:       viper.GetFloat64("paperless-rate"),
		Burst:      viper.GetInt("paperless-burst"),
	}
	c.cfg.Lexoffice = config.ConnectorConfig{
		BaseUrl:    viper.GetString("lexoffice-url"),
		Credential: viper.GetString("lexoffice-key"),
		Active:     viper.GetString("lexoffice-key") != "",
		Rate:       viper.GetFloat64("lexoffice-rate"),
		Burst:      viper.GetInt("lexoffice-burst"),
	}
	c.cfg.QueueCapacity = viper.GetInt("queue-capacity")
	c.cfg.RetryMaxTries = viper.GetUint64("retry-max-tries")
	c.cfg.ExecTimeoutSec = viper.GetInt("exec-timeout")
	c.cfg.SyncCron = viper.GetString("sync-cron")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	a, err := agent.New(c.cfg)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return a.Shutdown()
}

func main() {
	c := &cli{}
	cmd := &cobra.Command{
		Use:     "paperlex",
		PreRunE: c.setupConfig,
		RunE:    c.run,
	}
	if err := setupFlags(cmd); err != nil {
		panic(err)
	}
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
