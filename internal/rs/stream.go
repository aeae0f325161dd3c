package rs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// payloadBytesPerBlock is the number of real data bytes a fully-populated
// super-block carries, BlockLen rows of KK bytes each.
const payloadBytesPerBlock = BlockLen * KK

// trailerLen is the fixed size of the encoder's final output: a BLAKE2b-512
// digest followed by the 4-byte (k_i, k_j) truncation marker.
const trailerLen = 64 + 4

// ErrTruncated is returned by DecodeStream when the stream ends with neither a
// full super-block nor a well-formed trailer.
var ErrTruncated = errors.New("rs: file truncated, cannot validate checksum or strip padding")

// Summary aggregates the per-codeword outcomes across an entire decode run.
type Summary struct {
	CleanCodewords         int
	CorrectedCodewords     int
	UncorrectableCodewords int
	ChecksumOK             bool
}

// EncodeStream reads payload from src in super-block-sized chunks, RS-encodes and
// scatters each one to dst, and finishes with the trailing checksum and
// truncation marker (§4.H.3).
func EncodeStream(dst io.Writer, src io.Reader) error {
	h, err := blake2b.New512(nil)
	if err != nil {
		return fmt.Errorf("rs: init checksum: %w", err)
	}

	blocksEmitted := 0
	kI, kJ := 0, 0

	for {
		payload := make([]byte, payloadBytesPerBlock)
		n, rerr := io.ReadFull(src, payload)
		if rerr != nil && !errors.Is(rerr, io.ErrUnexpectedEOF) && !errors.Is(rerr, io.EOF) {
			return fmt.Errorf("rs: read payload: %w", rerr)
		}

		if rerr == nil {
			if err := encodeBlock(dst, payload); err != nil {
				return err
			}
			h.Write(payload)
			blocksEmitted++
			continue
		}

		if n == 0 {
			if blocksEmitted == 0 {
				kI, kJ = 0, 0
			} else {
				kI, kJ = BlockLen, 0
			}
			break
		}

		kI, kJ = n/KK, n%KK
		// payload beyond n is already zero (fresh slice); that padding is
		// encoded (so the receiver's codewords stay well-formed) but never
		// checksummed, since it carries no real data.
		if err := encodeBlock(dst, payload); err != nil {
			return err
		}
		h.Write(payload[:n])
		blocksEmitted++
		break
	}

	if _, err := dst.Write(h.Sum(nil)); err != nil {
		return fmt.Errorf("rs: write trailer checksum: %w", err)
	}
	var marker [4]byte
	binary.LittleEndian.PutUint16(marker[0:2], uint16(kI))
	binary.LittleEndian.PutUint16(marker[2:4], uint16(kJ))
	if _, err := dst.Write(marker[:]); err != nil {
		return fmt.Errorf("rs: write truncation marker: %w", err)
	}
	return nil
}

func encodeBlock(dst io.Writer, payload []byte) error {
	rowMajor := make([]byte, superBlockBytes)
	for row := 0; row < BlockLen; row++ {
		data := payload[row*KK : (row+1)*KK]
		parity := Encode(data)
		cw := rowMajor[row*NN : (row+1)*NN]
		copy(cw[:KK], data)
		copy(cw[KK:], parity[:])
		toDualBasis(cw)
	}
	wire := make([]byte, superBlockBytes)
	scatter(rowMajor, wire)
	_, err := dst.Write(wire)
	return err
}

// DecodeStream reads super-blocks from src, RS-decodes and gathers each one,
// streams the corrected payload to dst, and verifies the trailing checksum
// once the trailer is recognized (§4.H.4). It buffers exactly one decoded
// block at a time, since whether a block is the stream's last one — and
// therefore how much of it to emit — is only known once the read after it
// turns out to be the trailer rather than another full block.
func DecodeStream(dst io.Writer, src io.Reader) (Summary, error) {
	h, err := blake2b.New512(nil)
	if err != nil {
		return Summary{}, fmt.Errorf("rs: init checksum: %w", err)
	}

	var summary Summary
	var pending []byte // fully-decoded payload of the most recent full block, not yet emitted
	haveBlock := false

	flushFull := func() error {
		if !haveBlock {
			return nil
		}
		if _, err := dst.Write(pending); err != nil {
			return fmt.Errorf("rs: write payload: %w", err)
		}
		h.Write(pending)
		haveBlock = false
		return nil
	}

	for {
		chunk := make([]byte, superBlockBytes)
		n, rerr := io.ReadFull(src, chunk)
		if rerr == nil {
			if err := flushFull(); err != nil {
				return summary, err
			}
			payload, s := decodeBlock(chunk)
			summary.CleanCodewords += s.CleanCodewords
			summary.CorrectedCodewords += s.CorrectedCodewords
			summary.UncorrectableCodewords += s.UncorrectableCodewords
			pending = payload
			haveBlock = true
			continue
		}

		if errors.Is(rerr, io.ErrUnexpectedEOF) && n == trailerLen {
			return finishTrailer(dst, h, chunk[:n], pending, haveBlock, summary)
		}
		if errors.Is(rerr, io.EOF) && n == trailerLen {
			return finishTrailer(dst, h, chunk[:n], pending, haveBlock, summary)
		}

		if err := flushFull(); err != nil {
			return summary, err
		}
		return summary, ErrTruncated
	}
}

func finishTrailer(dst io.Writer, h hash.Hash, trailer, pending []byte, haveBlock bool, summary Summary) (Summary, error) {
	wantSum := trailer[:64]
	kI := int(binary.LittleEndian.Uint16(trailer[64:66]))
	kJ := int(binary.LittleEndian.Uint16(trailer[66:68]))

	if haveBlock {
		cut := kI*KK + kJ
		if cut > len(pending) {
			cut = len(pending)
		}
		if _, err := dst.Write(pending[:cut]); err != nil {
			return summary, fmt.Errorf("rs: write payload: %w", err)
		}
		h.Write(pending[:cut])
	}

	got := h.Sum(nil)
	summary.ChecksumOK = string(got) == string(wantSum)
	return summary, nil
}

func decodeBlock(wire []byte) ([]byte, Summary) {
	rowMajor := make([]byte, superBlockBytes)
	gather(wire, rowMajor)

	payload := make([]byte, payloadBytesPerBlock)
	var s Summary
	for row := 0; row < BlockLen; row++ {
		cw := rowMajor[row*NN : (row+1)*NN]
		fromDualBasis(cw)
		res := Decode(cw)
		switch {
		case !res.OK:
			s.UncorrectableCodewords++
		case res.Corrected == 0:
			s.CleanCodewords++
		default:
			s.CorrectedCodewords++
		}
		copy(payload[row*KK:(row+1)*KK], cw[:KK])
	}
	return payload, s
}
