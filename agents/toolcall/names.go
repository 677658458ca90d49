/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
)

// Names of every tool this package can provide.
const (
	ToolReadFile             = "read_file"
	ToolListDirectory        = "get_files_from_directory"
	ToolCreateFile           = "create_file"
	ToolUpdateFile           = "update_file"
	ToolDeleteFile           = "delete_file"
	ToolBaseBranchOverview   = "overview_of_files_in_base_branch"
	ToolListBranches         = "list_branches"
	ToolSetActiveBranch      = "set_active_branch"
	ToolCreateBranch         = "create_branch"
	ToolCreatePullRequest    = "create_pull_request"
	ToolListOpenPullRequests = "list_open_pull_requests"

	ToolLoadImage = "load_image"
	ToolPushImage = "push_image_to_github"
)

var validName = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidName reports whether name is acceptable to every supported model API.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Validate checks that every tool is registered under its own, valid name.
func Validate[Resp any](tools map[string]Tool[Resp]) error {
	for key, t := range tools {
		if key != t.Def.Name {
			return fmt.Errorf("tool registered as %q is named %q", key, t.Def.Name)
		}
		if !ValidName(key) {
			return fmt.Errorf("tool name %q must match %s", key, validName)
		}
		if t.Handler == nil {
			return fmt.Errorf("tool %q has no handler", key)
		}
	}
	return nil
}

// Names returns the sorted tool names in tools.
func Names[Resp any](tools map[string]Tool[Resp]) []string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select keeps only the named tools. An empty allow list keeps everything.
// Naming a tool that is not in tools is an error.
func Select[Resp any](tools map[string]Tool[Resp], allow ...string) (map[string]Tool[Resp], error) {
	if len(allow) == 0 {
		return tools, nil
	}
	selected := make(map[string]Tool[Resp], len(allow))
	for _, name := range allow {
		t, ok := tools[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q, available: %v", name, Names(tools))
		}
		selected[name] = t
	}
	return selected, nil
}

// Definitions returns the definitions of tools ordered by name.
func Definitions[Resp any](tools map[string]Tool[Resp]) []Definition {
	defs := make([]Definition, 0, len(tools))
	for _, name := range Names(tools) {
		defs = append(defs, tools[name].Def)
	}
	return defs
}

// Required returns the names of the required parameters of d, in declaration order.
func (d Definition) Required() []string {
	var req []string
	for _, p := range d.Parameters {
		if p.Required {
			req = append(req, p.Name)
		}
	}
	return req
}

// Catalog returns the definition of every tool this package can provide,
// ordered by name.
func Catalog() []Definition {
	all := []Tool[any]{
		readFileTool[any](nil),
		listDirectoryTool[any](nil),
		createFileTool[any](nil),
		updateFileTool[any](nil),
		deleteFileTool[any](nil),
		baseBranchOverviewTool[any](nil),
		listBranchesTool[any](nil),
		setActiveBranchTool[any](nil),
		createBranchTool[any](nil),
		createPullRequestTool[any](nil),
		listOpenPullRequestsTool[any](nil),
		loadImageTool[any](nil),
		pushImageTool[any](nil),
	}
	tools := make(map[string]Tool[any], len(all))
	for _, t := range all {
		tools[t.Def.Name] = t
	}
	return Definitions(tools)
}

// Known reports whether name is in the Catalog.
func Known(name string) bool {
	return slices.ContainsFunc(Catalog(), func(d Definition) bool { return d.Name == name })
}
