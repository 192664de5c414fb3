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

import "errors"

var (
	ErrInvalidHeaderLength   = errors.New("invalid header hash length")
	ErrInvalidMixLength      = errors.New("invalid mix hash length")
	ErrInvalidFinalLength    = errors.New("invalid final hash length")
	ErrInvalidBoundaryLength = errors.New("invalid boundary length")
	ErrUnknownAlgorithm      = errors.New("unknown proof-of-work algorithm")
	// ErrNoSolution is returned by Search when every nonce in range failed.
	ErrNoSolution = errors.New("no nonce found below boundary")
	// ErrSearchDisabled is returned by Search with a negative thread count.
	ErrSearchDisabled = errors.New("nonce search disabled")
)
