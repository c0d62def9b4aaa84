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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/bravo/database"
	"github.com/blinklabs-io/bravo/database/models"
	"github.com/blinklabs-io/bravo/database/types"
)

// Transfer moves value from the caller to another account. The transfer
// fee is debited to the fee recipient before the principal moves, and
// the caller's balance must cover both.
func (l *Ledger) Transfer(
	caller AccountID,
	to AccountID,
	value uint64,
	now Timestamp,
) error {
	l.Lock()
	defer l.Unlock()
	if value > math.MaxUint64-l.fee {
		return fmt.Errorf("transfer amount overflows: %w", ErrInsufficientBalance)
	}
	required := value + l.fee
	balance := l.balances[caller]
	if balance < required {
		return &InsufficientBalanceError{
			Account:  caller,
			Balance:  balance,
			Required: required,
		}
	}
	delta := newLedgerDelta()
	delta.move(l, caller, l.feeTo, l.fee)
	delta.move(l, caller, to, value)
	if err := l.persistDelta(delta, now); err != nil {
		return fmt.Errorf("failed to persist transfer: %w", err)
	}
	l.applyDelta(delta, now)
	l.metrics.transfersTotal.Inc()
	l.logger.Debug(
		"transferred tokens",
		"component", "ledger",
		"from", caller,
		"to", to,
		"value", value,
		"fee", l.fee,
	)
	l.publish(
		TransferEventType,
		TransferEvent{
			Caller:    caller,
			From:      caller,
			To:        to,
			Value:     value,
			Fee:       l.fee,
			Timestamp: now,
		},
	)
	return nil
}

// TransferFrom moves value from one account to another on the strength
// of an allowance granted to the caller. The allowance must cover the
// value plus the fee and is reduced by both.
func (l *Ledger) TransferFrom(
	caller AccountID,
	from AccountID,
	to AccountID,
	value uint64,
	now Timestamp,
) error {
	l.Lock()
	defer l.Unlock()
	if value > math.MaxUint64-l.fee {
		return fmt.Errorf("transfer amount overflows: %w", ErrInsufficientAllowance)
	}
	required := value + l.fee
	allowance := l.allowances[from][caller]
	if allowance < required {
		return &InsufficientAllowanceError{
			Owner:     from,
			Spender:   caller,
			Allowance: allowance,
			Required:  required,
		}
	}
	balance := l.balances[from]
	if balance < required {
		return &InsufficientBalanceError{
			Account:  from,
			Balance:  balance,
			Required: required,
		}
	}
	delta := newLedgerDelta()
	delta.move(l, from, l.feeTo, l.fee)
	delta.move(l, from, to, value)
	delta.setAllowance(from, caller, allowance-required)
	if err := l.persistDelta(delta, now); err != nil {
		return fmt.Errorf("failed to persist transfer: %w", err)
	}
	l.applyDelta(delta, now)
	l.metrics.transfersTotal.Inc()
	l.logger.Debug(
		"transferred tokens from allowance",
		"component", "ledger",
		"caller", caller,
		"from", from,
		"to", to,
		"value", value,
		"fee", l.fee,
	)
	l.publish(
		TransferEventType,
		TransferEvent{
			Caller:    caller,
			From:      from,
			To:        to,
			Value:     value,
			Fee:       l.fee,
			Timestamp: now,
		},
	)
	return nil
}

// Approve grants a spender an allowance over the caller's tokens. The
// stored allowance is the requested value plus the fee, so the spender
// can move the full value through TransferFrom. Approving zero removes
// the allowance entry. The fee is charged either way.
func (l *Ledger) Approve(
	caller AccountID,
	spender AccountID,
	value uint64,
	now Timestamp,
) error {
	l.Lock()
	defer l.Unlock()
	if value > math.MaxUint64-l.fee {
		return fmt.Errorf("approval amount overflows: %w", ErrInsufficientBalance)
	}
	balance := l.balances[caller]
	if balance < l.fee {
		return &InsufficientBalanceError{
			Account:  caller,
			Balance:  balance,
			Required: l.fee,
		}
	}
	delta := newLedgerDelta()
	delta.move(l, caller, l.feeTo, l.fee)
	if value == 0 {
		delta.setAllowance(caller, spender, 0)
	} else {
		delta.setAllowance(caller, spender, value+l.fee)
	}
	if err := l.persistDelta(delta, now); err != nil {
		return fmt.Errorf("failed to persist approval: %w", err)
	}
	l.applyDelta(delta, now)
	l.metrics.approvalsTotal.Inc()
	l.logger.Debug(
		"approved allowance",
		"component", "ledger",
		"owner", caller,
		"spender", spender,
		"value", value,
	)
	l.publish(
		ApproveEventType,
		ApproveEvent{
			Owner:     caller,
			Spender:   spender,
			Value:     value,
			Fee:       l.fee,
			Timestamp: now,
		},
	)
	return nil
}

// Mint creates new tokens in the given account. Only the token owner
// may mint.
func (l *Ledger) Mint(
	caller AccountID,
	to AccountID,
	value uint64,
	now Timestamp,
) error {
	l.Lock()
	defer l.Unlock()
	if caller != l.owner {
		return fmt.Errorf("mint requires token owner: %w", ErrUnauthorized)
	}
	if value > math.MaxUint64-l.totalSupply {
		return errors.New("mint overflows total supply")
	}
	delta := newLedgerDelta()
	delta.credit(l, to, value)
	supply := l.totalSupply + value
	delta.totalSupply = &supply
	if err := l.persistDelta(delta, now); err != nil {
		return fmt.Errorf("failed to persist mint: %w", err)
	}
	l.applyDelta(delta, now)
	l.logger.Info(
		"minted tokens",
		"component", "ledger",
		"to", to,
		"value", value,
		"total_supply", l.totalSupply,
	)
	l.publish(
		MintEventType,
		MintEvent{
			Caller:    caller,
			To:        to,
			Value:     value,
			Timestamp: now,
		},
	)
	return nil
}

// Burn destroys tokens from the caller's own balance
func (l *Ledger) Burn(
	caller AccountID,
	value uint64,
	now Timestamp,
) error {
	l.Lock()
	defer l.Unlock()
	balance := l.balances[caller]
	if balance < value {
		return &InsufficientBalanceError{
			Account:  caller,
			Balance:  balance,
			Required: value,
		}
	}
	delta := newLedgerDelta()
	delta.debit(l, caller, value)
	supply := l.totalSupply - value
	delta.totalSupply = &supply
	if err := l.persistDelta(delta, now); err != nil {
		return fmt.Errorf("failed to persist burn: %w", err)
	}
	l.applyDelta(delta, now)
	l.logger.Info(
		"burned tokens",
		"component", "ledger",
		"from", caller,
		"value", value,
		"total_supply", l.totalSupply,
	)
	l.publish(
		BurnEventType,
		BurnEvent{
			From:      caller,
			Value:     value,
			Timestamp: now,
		},
	)
	return nil
}

// SetFee updates the per-operation transfer fee. Owner only.
func (l *Ledger) SetFee(caller AccountID, fee uint64) error {
	l.Lock()
	defer l.Unlock()
	if caller != l.owner {
		return fmt.Errorf("set fee requires token owner: %w", ErrUnauthorized)
	}
	params := l.paramsRow()
	params.Fee = types.Uint64(fee)
	if err := l.persistParams(params); err != nil {
		return err
	}
	l.fee = fee
	l.logger.Info(
		"updated transfer fee",
		"component", "ledger",
		"fee", fee,
	)
	return nil
}

// SetFeeTo updates the fee recipient. Owner only.
func (l *Ledger) SetFeeTo(caller AccountID, feeTo AccountID) error {
	l.Lock()
	defer l.Unlock()
	if caller != l.owner {
		return fmt.Errorf("set fee recipient requires token owner: %w", ErrUnauthorized)
	}
	params := l.paramsRow()
	params.FeeTo = string(feeTo)
	if err := l.persistParams(params); err != nil {
		return err
	}
	l.feeTo = feeTo
	l.logger.Info(
		"updated fee recipient",
		"component", "ledger",
		"fee_to", feeTo,
	)
	return nil
}

// SetOwner hands token ownership to another account. Owner only.
func (l *Ledger) SetOwner(caller AccountID, owner AccountID) error {
	l.Lock()
	defer l.Unlock()
	if caller != l.owner {
		return fmt.Errorf("set owner requires token owner: %w", ErrUnauthorized)
	}
	params := l.paramsRow()
	params.Owner = string(owner)
	if err := l.persistParams(params); err != nil {
		return err
	}
	l.owner = owner
	l.logger.Info(
		"updated token owner",
		"component", "ledger",
		"owner", owner,
	)
	return nil
}

func (l *Ledger) persistParams(params *models.TokenParams) error {
	err := l.withMetadataTxn(func(txn *database.Txn) error {
		return l.db.SetTokenParams(params, txn)
	})
	if err != nil {
		return fmt.Errorf("failed to persist token params: %w", err)
	}
	return nil
}
