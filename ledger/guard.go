// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "github.com/ava-labs/avalanchego/ids"

// Authorize fails with ErrUnauthorized unless [presented] is [required].
// It is evaluated on every privileged call; nothing is cached.
func Authorize(required, presented ids.ID) error {
	if required == ids.Empty || presented != required {
		return ErrUnauthorized
	}
	return nil
}

// RequireSigner fails with ErrMissingSignature unless the host verified [id]
// for [call].
func RequireSigner(call *Call, id ids.ID) error {
	if !call.Signed(id) {
		return ErrMissingSignature
	}
	return nil
}
