// Copyright 2018 The aquachain Authors
// This file is part of the aquachain library.
//
// The aquachain library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aquachain library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aquachain library. If not, see <http://www.gnu.org/licenses/>.

package aquahash

import (
	"fmt"

	"gitlab.com/aquachain/ethash/common"
	"gitlab.com/aquachain/ethash/consensus/ethash"
	"gitlab.com/aquachain/ethash/consensus/progpow"
)

const (
	AlgorithmEthash  = "ethash"
	AlgorithmProgPoW = "progpow"
)

// Algorithm is a proof-of-work hash over an ethash epoch context.
type Algorithm interface {
	Name() string
	Hash(c *ethash.EpochContext, block uint64, header common.Hash, nonce uint64) ethash.Result
	// VerifyClaim checks final and boundary without an epoch context.
	VerifyClaim(header common.Hash, nonce uint64, mix, final, boundary common.Hash) ethash.Verdict
	// VerifyMix recomputes the mix hash over the epoch context.
	VerifyMix(c *ethash.EpochContext, block uint64, header common.Hash, nonce uint64, mix common.Hash) ethash.Verdict
}

// AlgorithmByName returns the algorithm registered under name. An empty name
// selects ProgPoW.
func AlgorithmByName(name string) (Algorithm, error) {
	switch name {
	case AlgorithmEthash:
		return classic{}, nil
	case AlgorithmProgPoW, "":
		return progPoW{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// classic is hashimoto; the block number plays no part.
type classic struct{}

func (classic) Name() string { return AlgorithmEthash }

func (classic) Hash(c *ethash.EpochContext, _ uint64, header common.Hash, nonce uint64) ethash.Result {
	return ethash.Hash(c, header, nonce)
}

func (classic) VerifyClaim(header common.Hash, nonce uint64, mix, final, boundary common.Hash) ethash.Verdict {
	return ethash.VerifyClaim(header, nonce, mix, final, boundary)
}

func (classic) VerifyMix(c *ethash.EpochContext, _ uint64, header common.Hash, nonce uint64, mix common.Hash) ethash.Verdict {
	return ethash.VerifyMix(c, header, nonce, mix)
}

type progPoW struct{}

func (progPoW) Name() string { return AlgorithmProgPoW }

func (progPoW) Hash(c *ethash.EpochContext, block uint64, header common.Hash, nonce uint64) ethash.Result {
	return progpow.Hash(c, block, header, nonce)
}

func (progPoW) VerifyClaim(header common.Hash, nonce uint64, mix, final, boundary common.Hash) ethash.Verdict {
	return progpow.VerifyClaim(header, nonce, mix, final, boundary)
}

func (progPoW) VerifyMix(c *ethash.EpochContext, block uint64, header common.Hash, nonce uint64, mix common.Hash) ethash.Verdict {
	return progpow.VerifyMix(c, block, header, nonce, mix)
}
