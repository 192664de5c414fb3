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

package ethash

import "errors"

var (
	// ErrEpochTooLarge is returned for epochs above Params.MaxEpoch.
	ErrEpochTooLarge = errors.New("epoch number too large")
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid ethash parameters")
	// ErrDatasetMismatch is returned when an attached dataset does not
	// belong to the context's epoch or has the wrong size.
	ErrDatasetMismatch = errors.New("dataset does not match epoch context")
	// ErrStoreClosed is returned by a Store after Close.
	ErrStoreClosed = errors.New("epoch store closed")
	// ErrUnknownSeed is returned when no epoch up to MaxEpoch has the seed.
	ErrUnknownSeed = errors.New("seed hash does not belong to any epoch")
	// ErrInvalidBoundary is returned for boundaries that are not 32 bytes.
	ErrInvalidBoundary = errors.New("boundary must be 32 bytes")
)
