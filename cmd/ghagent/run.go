/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chainguard.dev/ghagent/agents/agenttrace"
	"chainguard.dev/ghagent/agents/repoagent"
	"chainguard.dev/ghagent/repos/images"
	"chainguard.dev/ghagent/repos/toolkit"
	"github.com/chainguard-dev/clog"
)

// sessions opens one toolkit session per repository and reuses it.
type sessions struct {
	cfg  *config
	open map[string]*toolkit.Session
}

func (s *sessions) get(ctx context.Context, repository, base string) (*toolkit.Session, error) {
	key := repository + "@" + base
	if sess, ok := s.open[key]; ok {
		return sess, nil
	}
	clients, err := s.cfg.credentials().ForRepository(ctx, repository)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", repository, err)
	}
	sess, err := toolkit.New(ctx, clients, base)
	if err != nil {
		return nil, err
	}
	if s.cfg.Branch != "" && s.cfg.Branch != sess.BaseBranch() {
		if err := sess.SetActiveBranch(ctx, s.cfg.Branch); err != nil {
			return nil, err
		}
	}
	s.open[key] = sess
	return sess, nil
}

func runTasks(ctx context.Context, cfg *config, args []string, w io.Writer) error {
	tasks, err := cfg.tasks(args)
	if err != nil {
		return err
	}
	agent, err := repoagent.New(ctx, cfg.provider(ctx), cfg.Model, repoagent.Options{
		MaxTurns: cfg.MaxTurns,
		Tools:    cfg.EnabledTools,
	})
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	open := &sessions{cfg: cfg, open: map[string]*toolkit.Session{}}
	for i := range tasks {
		task := &tasks[i]
		res, err := runTask(ctx, agent, open, i+1, task)
		if err != nil {
			return fmt.Errorf("task %d: %w", i+1, err)
		}
		printResult(w, i+1, task, res)
	}
	return nil
}

func runTask(ctx context.Context, agent repoagent.Agent, open *sessions, n int, task *repoagent.Task) (*repoagent.TaskResult, error) {
	sess, err := open.get(ctx, task.Repository, task.BaseBranch)
	if err != nil {
		return nil, err
	}
	uploader := open.cfg.uploader(task.UploadBranch)
	if task.BaseBranch == "" {
		task.BaseBranch = sess.BaseBranch()
	}

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Repository: task.Repository,
		Branch:     sess.ActiveBranch(),
		Task:       strconv.Itoa(n),
	})
	log := clog.FromContext(ctx).With("task", n, "repository", task.Repository)
	log.With("instruction", task.Instruction).Info("Running task")

	res, err := agent.Execute(ctx, task, repoagent.NewCallbacks(sess.Callbacks(), images.Callbacks(uploader)))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, errors.New("agent returned no result")
	}
	log.With("summary", res.Summary, "pull_request", res.PullRequestURL, "files", res.FilesChanged).Info("Task finished")
	return res, nil
}

func printResult(w io.Writer, n int, task *repoagent.Task, res *repoagent.TaskResult) {
	fmt.Fprintf(w, "Task %d: %s\n", n, task.Instruction)
	fmt.Fprintf(w, "  %s\n", res.Summary)
	if res.PullRequestURL != "" {
		fmt.Fprintf(w, "  Pull request: %s\n", res.PullRequestURL)
	}
	if len(res.FilesChanged) > 0 {
		fmt.Fprintf(w, "  Files: %s\n", strings.Join(res.FilesChanged, ", "))
	}
}
