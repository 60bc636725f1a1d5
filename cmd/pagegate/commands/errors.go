// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import "errors"

var (
	errNoEndpoint = errors.New("no decision endpoint: set decision.endpoint in the config file or pass --endpoint")
	errNoBaseURL  = errors.New("no role-binding service: set rbac.base_url in the config file or pass --base-url")
)
