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
)

var (
	// ErrInsufficientBalance is returned when an account's balance cannot
	// cover a transfer, approval fee, burn, or delegation
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when a spender's allowance
	// cannot cover a transfer plus its fee
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrUnauthorized is returned when a caller attempts an owner-only
	// operation
	ErrUnauthorized = errors.New("unauthorized")
)

// InsufficientBalanceError carries the amounts behind a failed balance
// check. It matches ErrInsufficientBalance via errors.Is.
type InsufficientBalanceError struct {
	Account  AccountID
	Balance  uint64
	Required uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance: account=%s balance=%d required=%d",
		e.Account,
		e.Balance,
		e.Required,
	)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// InsufficientAllowanceError carries the amounts behind a failed
// allowance check. It matches ErrInsufficientAllowance via errors.Is.
type InsufficientAllowanceError struct {
	Owner     AccountID
	Spender   AccountID
	Allowance uint64
	Required  uint64
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf(
		"insufficient allowance: owner=%s spender=%s allowance=%d required=%d",
		e.Owner,
		e.Spender,
		e.Allowance,
		e.Required,
	)
}

func (e *InsufficientAllowanceError) Unwrap() error {
	return ErrInsufficientAllowance
}
