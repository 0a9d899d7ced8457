package wal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// FileModeReadOnly rw-r--r-- (擁有者讀寫，其他人唯讀)
const FileModeReadOnly fs.FileMode = 0644

// WAL 以 JSON Lines 格式追加寫入的 Write-Ahead Log
// 每筆紀錄一行，Write 會在回傳前 fsync
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// NewWAL 開啟或建立一個 WAL 檔案
// O_APPEND 每次寫入時自動跳到文件末尾
// O_CREATE 如果文件不存在則建立
func NewWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileModeReadOnly)
	if err != nil {
		return nil, fmt.Errorf("open wal %s: %w", path, err)
	}
	return &WAL{file: file}, nil
}

// Write 寫入一筆資料並刷入硬碟
func (w *WAL) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.file).Encode(v); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close 關閉檔案
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadAll 從頭依序讀取所有紀錄
// callback 一次收到一筆原始 JSON，避免一次將所有資料載入記憶體
// 檔案尾端寫到一半的紀錄 (例如寫入時程式崩潰) 會被截斷，之後的 Write 從最後一筆完整紀錄後接續
func (w *WAL) ReadAll(callback func(raw json.RawMessage) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	// O_APPEND 下寫入不受讀取位置影響，讀完後仍將位置移回尾端
	defer w.file.Seek(0, io.SeekEnd)

	decoder := json.NewDecoder(w.file)
	// lastEnd 最後一筆完整紀錄結束的位置
	var lastEnd int64
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return w.truncateTail(lastEnd)
			}
			return fmt.Errorf("decode wal record: %w", err)
		}
		lastEnd = decoder.InputOffset()
		if err := callback(raw); err != nil {
			return err
		}
	}
}

// truncateTail 移除 offset 之後殘缺的資料，並補回換行
func (w *WAL) truncateTail(offset int64) error {
	if err := w.file.Truncate(offset); err != nil {
		return fmt.Errorf("truncate torn wal tail: %w", err)
	}
	if offset > 0 {
		// Truncate 不影響 O_APPEND，換行會寫在新的檔尾
		if _, err := w.file.Write([]byte("\n")); err != nil {
			return fmt.Errorf("truncate torn wal tail: %w", err)
		}
	}
	return w.file.Sync()
}
