package model

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/YuminosukeSato/olsinfer/pkg/compress"
	"github.com/YuminosukeSato/olsinfer/pkg/errors"
)

// snapshotMagic はスナップショットの先頭4バイト
var snapshotMagic = [4]byte{'O', 'L', 'S', '1'}

// headerSize = magic(4) + codec(1) + raw length(4) + xxhash64(8)
const headerSize = 4 + 1 + 4 + 8

// maxRawSize は保存・復元できる非圧縮サイズの上限
const maxRawSize = compress.MaxDecompressedSize

// SaveSnapshot はモデルの状態をgobでエンコードし、圧縮してwに書き込む
//
// フォーマット:
//
//	magic "OLS1" | codec byte | raw length uint32 BE | xxhash64(raw) uint64 BE | body
//
// 圧縮しても小さくならない場合は非圧縮（compress.TypeNone）で保存する。
//
// 使用例:
//
//	snap, _ := reg.Snapshot()
//	err := model.SaveSnapshot(f, snap, compress.TypeZstd)
func SaveSnapshot(w io.Writer, v any, codec compress.Type) error {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}
	if uint64(raw.Len()) > maxRawSize {
		return errors.NewValueError("model.SaveSnapshot", "snapshot payload exceeds size limit")
	}

	c, err := compress.GetCodec(codec)
	if err != nil {
		return err
	}
	body, err := c.Compress(raw.Bytes())
	if err != nil && !errors.Is(err, compress.ErrIncompressible) {
		return errors.Wrapf(err, "failed to compress snapshot with %s", codec)
	}
	if err != nil || len(body) >= raw.Len() {
		codec = compress.TypeNone
		body = raw.Bytes()
	}

	var header [headerSize]byte
	copy(header[0:4], snapshotMagic[:])
	header[4] = byte(codec)
	binary.BigEndian.PutUint32(header[5:9], uint32(raw.Len()))
	binary.BigEndian.PutUint64(header[9:17], xxhash.Sum64(raw.Bytes()))

	if _, err := w.Write(header[:]); err != nil {
		return errors.Wrap(err, "failed to write snapshot header")
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "failed to write snapshot body")
	}
	return nil
}

// LoadSnapshot はSaveSnapshotで書き込まれたスナップショットをrから読み込み、vにデコードする
//
// マジック、コーデック、長さ、チェックサムのいずれかが一致しない場合はValueErrorを返す。
func LoadSnapshot(r io.Reader, v any) error {
	const op = "model.LoadSnapshot"

	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "failed to read snapshot")
	}
	if len(data) < headerSize {
		return errors.NewValueError(op, "snapshot is truncated")
	}
	if !bytes.Equal(data[0:4], snapshotMagic[:]) {
		return errors.NewValueError(op, "bad snapshot magic")
	}

	codec := compress.Type(data[4])
	c, err := compress.GetCodec(codec)
	if err != nil {
		return errors.NewValueError(op, "unknown snapshot codec "+codec.String())
	}
	rawLen := int(binary.BigEndian.Uint32(data[5:9]))
	sum := binary.BigEndian.Uint64(data[9:17])
	// ヘッダはまだ検証されていないので、長さを信用して確保する前に上限を確かめる
	if rawLen > maxRawSize {
		return errors.NewValueError(op, "snapshot body exceeds size limit")
	}

	raw, err := c.Decompress(data[headerSize:], rawLen)
	if err != nil {
		return errors.Wrap(errors.NewValueError(op, "corrupt snapshot body"), err.Error())
	}
	if len(raw) != rawLen {
		return errors.NewValueError(op, "snapshot length mismatch")
	}
	if xxhash.Sum64(raw) != sum {
		return errors.NewValueError(op, "snapshot checksum mismatch")
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode snapshot")
	}
	return nil
}

// SaveSnapshotFile はスナップショットをファイルに保存する
func SaveSnapshotFile(path string, v any, codec compress.Type) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "failed to close file")
		}
	}()
	return SaveSnapshot(f, v, codec)
}

// LoadSnapshotFile はファイルからスナップショットを読み込む
func LoadSnapshotFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer f.Close()
	return LoadSnapshot(f, v)
}
