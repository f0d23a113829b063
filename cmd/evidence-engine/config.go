// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/evidence-engine/internal/logging"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

func init() {
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.results_per_query", 5)
	viper.SetDefault("search.enable_google_news", true)
	viper.SetDefault("fetch.timeout", 30*time.Second)
	viper.SetDefault("fetch.render_wait", 3*time.Second)
	viper.SetDefault("fetch.min_content_len", 100)
	viper.SetDefault("fetch.max_content_len", 10000)
	viper.SetDefault("oracle.timeout", 60*time.Second)
	viper.SetDefault("oracle.max_concurrent", 4)
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("store.dir", "evidence")
	viper.SetDefault("store.max_results", 20)
}

// pipelineConfig assembles the full stage configuration: viper (config file
// plus EVIDENCE_ENGINE_* environment) for settings, .secrets/ files as the
// credential fallback.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: "evidence-engine/" + version,
			},
			MaxResults:       viper.GetInt("search.max_results"),
			ResultsPerQuery:  viper.GetInt("search.results_per_query"),
			NewsAPIKey:       secretDefault("news-api-key", viper.GetString("search.news_api_key")),
			SerperAPIKey:     secretDefault("serper-api-key", viper.GetString("search.serper_api_key")),
			EnableGoogleNews: viper.GetBool("search.enable_google_news"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout: viper.GetDuration("fetch.timeout"),
			},
			ExtractorAPIKey: secretDefault("extractor-api-key", viper.GetString("fetch.extractor_api_key")),
			RenderWait:      viper.GetDuration("fetch.render_wait"),
			MinContentLen:   viper.GetInt("fetch.min_content_len"),
			MaxContentLen:   viper.GetInt("fetch.max_content_len"),
		},
		Oracle: types.OracleConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout: viper.GetDuration("oracle.timeout"),
			},
			Model:         viper.GetString("oracle.model"),
			APIKey:        secretDefault("oracle-api-key", viper.GetString("oracle.api_key")),
			MaxConcurrent: viper.GetInt("oracle.max_concurrent"),
		},
		Serve: types.ServeConfig{
			Addr: viper.GetString("serve.addr"),
		},
		Store: types.StoreConfig{
			Dir:        viper.GetString("store.dir"),
			MaxResults: viper.GetInt("store.max_results"),
		},
	}
}

// newLogger builds the process logger from the root flags.
func newLogger(cmd *cobra.Command) *zap.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return logging.New(level, format)
}
