// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blinklabs-io/bravo/ledger"
)

// VoteClient resolves voting power from another node's API, for
// deployments where the token ledger lives on a different node than
// the governance engine. It implements governance.VoteSource.
type VoteClient struct {
	baseUrl string
	client  *http.Client
}

// NewVoteClient creates a vote client against the given base URL.
func NewVoteClient(baseUrl string) *VoteClient {
	return &VoteClient{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetCurrentVotes returns the account's current voting power.
func (c *VoteClient) GetCurrentVotes(
	ctx context.Context,
	account ledger.AccountID,
) (uint64, error) {
	var resp AccountResponse
	reqUrl := fmt.Sprintf(
		"%s/ledger/accounts/%s",
		c.baseUrl,
		url.PathEscape(string(account)),
	)
	if err := c.getJson(ctx, reqUrl, &resp); err != nil {
		return 0, err
	}
	return resp.CurrentVotes, nil
}

// GetPriorVotes returns the account's voting power at the given time.
func (c *VoteClient) GetPriorVotes(
	ctx context.Context,
	account ledger.AccountID,
	at uint64,
) (uint64, error) {
	var resp VotesResponse
	reqUrl := fmt.Sprintf(
		"%s/ledger/accounts/%s/votes?at=%d",
		c.baseUrl,
		url.PathEscape(string(account)),
		at,
	)
	if err := c.getJson(ctx, reqUrl, &resp); err != nil {
		return 0, err
	}
	return resp.Votes, nil
}

func (c *VoteClient) getJson(
	ctx context.Context,
	reqUrl string,
	v any,
) error {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		reqUrl,
		nil,
	)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"unexpected status %d from %s",
			resp.StatusCode,
			reqUrl,
		)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
