/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package protocol

import "errors"

// Sentinel errors the core distinguishes, per the error handling design.
var (
	// ErrUnknownPacket means no factory rule matched (chid, type, channel class).
	ErrUnknownPacket = errors.New("nsp: unknown packet")
	// ErrTruncatedDatagram means the body is shorter than the header-declared dlen implies.
	ErrTruncatedDatagram = errors.New("nsp: truncated datagram")
	// ErrWireVersionMismatch means the header cannot be decoded with the configured wire version.
	ErrWireVersionMismatch = errors.New("nsp: wire version mismatch")
)
