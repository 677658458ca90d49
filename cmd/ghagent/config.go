/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"chainguard.dev/ghagent/agents/metaagent"
	"chainguard.dev/ghagent/agents/repoagent"
	"chainguard.dev/ghagent/repos/fileupsert"
	"chainguard.dev/ghagent/repos/ghclient"
	"cloud.google.com/go/compute/metadata"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type config struct {
	GitHubToken          string `env:"GITHUB_TOKEN"`
	GitHubAppID          int64  `env:"GITHUB_APP_ID"`
	GitHubPrivateKeyPath string `env:"GITHUB_APP_PRIVATE_KEY_PATH"`
	GitHubAPIURL         string `env:"GITHUB_API_URL"`
	Repository           string `env:"GITHUB_REPOSITORY,required"`
	BaseBranch           string `env:"GITHUB_BASE_BRANCH"`
	// Branch is the branch the agent starts on; empty stays on the base branch.
	Branch string `env:"GITHUB_BRANCH"`

	UploadRepository    string `env:"UPLOAD_REPOSITORY"`
	UploadBranch        string `env:"UPLOAD_BRANCH,default=dev"`
	UploadCommitMessage string `env:"UPLOAD_COMMIT_MESSAGE,default=Upload image"`
	UploadLookupLenient bool   `env:"UPLOAD_TREAT_LOOKUP_ERRORS_AS_ABSENT,default=false"`

	Model           string   `env:"MODEL,default=gemini-2.0-flash"`
	GoogleAPIKey    string   `env:"GOOGLE_API_KEY"`
	AnthropicAPIKey string   `env:"ANTHROPIC_API_KEY"`
	ProjectID       string   `env:"GCP_PROJECT_ID"`
	Region          string   `env:"GCP_REGION"`
	MaxTurns        int      `env:"MAX_TURNS,default=50"`
	EnabledTools    []string `env:"ENABLED_TOOLS"`

	TaskFile    string     `env:"TASK_FILE"`
	LogLevel    slog.Level `env:"LOG_LEVEL,default=info"`
	MetricsPort int        `env:"METRICS_PORT,default=0"`
}

func loadConfig(ctx context.Context, lookuper envconfig.Lookuper) (*config, error) {
	var cfg config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	if _, _, err := ghclient.SplitRepository(cfg.Repository); err != nil {
		return nil, fmt.Errorf("GITHUB_REPOSITORY: %w", err)
	}
	return &cfg, nil
}

func (c *config) credentials() ghclient.Credentials {
	return ghclient.Credentials{
		Token:          c.GitHubToken,
		AppID:          c.GitHubAppID,
		PrivateKeyPath: c.GitHubPrivateKeyPath,
		APIURL:         c.GitHubAPIURL,
	}
}

const defaultRegion = "us-central1"

// provider fills in the Vertex AI project and region from the GCE metadata
// server when they are unset and some model family has no API key.
func (c *config) provider(ctx context.Context) metaagent.Provider {
	p := metaagent.Provider{
		GoogleAPIKey:    c.GoogleAPIKey,
		AnthropicAPIKey: c.AnthropicAPIKey,
		ProjectID:       c.ProjectID,
		Region:          c.Region,
	}
	needsVertex := c.GoogleAPIKey == "" || c.AnthropicAPIKey == ""
	if needsVertex && (p.ProjectID == "" || p.Region == "") && metadata.OnGCE() {
		log := clog.FromContext(ctx)
		if p.ProjectID == "" {
			if id, err := metadata.ProjectIDWithContext(ctx); err != nil {
				log.With("error", err).Warn("Failed to detect project ID")
			} else {
				log.With("project_id", id).Info("Detected Google Cloud project")
				p.ProjectID = id
			}
		}
		if p.Region == "" {
			if zone, err := metadata.ZoneWithContext(ctx); err != nil {
				log.With("error", err).Warn("Failed to detect zone")
			} else if i := strings.LastIndex(zone, "-"); i > 0 {
				p.Region = zone[:i]
				log.With("region", p.Region).Info("Detected Google Cloud region")
			}
		}
	}
	p.Region = cmp.Or(p.Region, defaultRegion)
	return p
}

// uploadToken resolves a token for the upload repository. Missing
// credentials yield an empty token so the upload reports it.
func (c *config) uploadToken(ctx context.Context, repository string) (string, error) {
	owner, name, err := ghclient.SplitRepository(repository)
	if err != nil {
		return "", err
	}
	tok, err := c.credentials().ResolveToken(ctx, owner, name)
	if errors.Is(err, ghclient.ErrNoCredentials) {
		return "", nil
	}
	return tok, err
}

// uploader builds the file upserter for branch, or UPLOAD_BRANCH when empty.
// The token is resolved per upload, after the local file is found.
func (c *config) uploader(branch string) *fileupsert.Uploader {
	return fileupsert.New(fileupsert.Config{
		Token:                     c.GitHubToken,
		Repository:                cmp.Or(c.UploadRepository, c.Repository),
		Branch:                    cmp.Or(branch, c.UploadBranch),
		CommitMessage:             c.UploadCommitMessage,
		TreatLookupErrorsAsAbsent: c.UploadLookupLenient,
	}, fileupsert.WithAPIURL(c.GitHubAPIURL), fileupsert.WithTokenSource(c.uploadToken))
}

type taskFile struct {
	Tasks []repoagent.Task `yaml:"tasks"`
}

// tasks returns the instructions from args followed by those in TASK_FILE.
// Repository and base branch default to the configured ones.
func (c *config) tasks(args []string) ([]repoagent.Task, error) {
	var tasks []repoagent.Task
	for _, arg := range args {
		tasks = append(tasks, repoagent.Task{Instruction: arg})
	}
	if c.TaskFile != "" {
		b, err := os.ReadFile(c.TaskFile)
		if err != nil {
			return nil, fmt.Errorf("reading task file: %w", err)
		}
		var tf taskFile
		if err := yaml.Unmarshal(b, &tf); err != nil {
			return nil, fmt.Errorf("parsing task file %s: %w", c.TaskFile, err)
		}
		tasks = append(tasks, tf.Tasks...)
	}
	if len(tasks) == 0 {
		return nil, errors.New("no tasks: pass instructions as arguments or set TASK_FILE")
	}
	for i := range tasks {
		if tasks[i].Instruction == "" {
			return nil, fmt.Errorf("task %d has no instruction", i+1)
		}
		tasks[i].Repository = cmp.Or(tasks[i].Repository, c.Repository)
		tasks[i].BaseBranch = cmp.Or(tasks[i].BaseBranch, c.BaseBranch)
		tasks[i].UploadBranch = cmp.Or(tasks[i].UploadBranch, c.UploadBranch)
	}
	return tasks, nil
}
