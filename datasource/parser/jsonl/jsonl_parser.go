// Package jsonl loads relations from JSON Lines data. Every rank reads the whole input and keeps
// only its own portion of the rows.
package jsonl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-sif/sjoin"
	"github.com/go-sif/sjoin/partition"
)

// ParserConf configures a JSONL Parser
type ParserConf struct {
	KeyPath       string // gjson path of the join key. Defaults to "key".
	PayloadAPath  string // gjson path of the probe relation's floating point payload. Defaults to "a".
	PayloadBPath  string // gjson path of the probe relation's integer payload. Defaults to "b".
	HeaderLines   int    // The number of lines to ignore from the beginning of the input. Defaults to 0.
	Comment       rune   // Lines beginning with the comment character are ignored. Defaults to no comment character.
	MaxBufferSize int    // Maximum size in bytes of the buffer used to read lines
}

// Parser produces relation portions from JSONL data
type Parser struct {
	conf *ParserConf
}

// CreateParser returns a new JSONL Parser. Values within the JSON which do not correspond to a
// configured path are ignored.
func CreateParser(conf *ParserConf) *Parser {
	c := &ParserConf{}
	if conf != nil {
		*c = *conf
	}
	if c.KeyPath == "" {
		c.KeyPath = "key"
	}
	if c.PayloadAPath == "" {
		c.PayloadAPath = "a"
	}
	if c.PayloadBPath == "" {
		c.PayloadBPath = "b"
	}
	if c.MaxBufferSize == 0 {
		c.MaxBufferSize = bufio.MaxScanTokenSize
	}
	return &Parser{conf: c}
}

// ParseBuild reads a build relation and returns this rank's portion of it
func (p *Parser) ParseBuild(r io.Reader, comm sjoin.Comm) (*sjoin.BuildChunk, error) {
	rows, err := p.portion(r, comm)
	if err != nil {
		return nil, err
	}
	build := &sjoin.BuildChunk{Keys: make([]int32, len(rows))}
	for i, row := range rows {
		if build.Keys[i], err = scanInt32(row, p.conf.KeyPath); err != nil {
			return nil, err
		}
	}
	return build, nil
}

// ParseProbe reads a probe relation and returns this rank's portion of it
func (p *Parser) ParseProbe(r io.Reader, comm sjoin.Comm) (*sjoin.ProbeChunk, error) {
	rows, err := p.portion(r, comm)
	if err != nil {
		return nil, err
	}
	probe := &sjoin.ProbeChunk{
		Keys:     make([]int32, len(rows)),
		PayloadA: make([]float64, len(rows)),
		PayloadB: make([]int32, len(rows)),
	}
	for i, row := range rows {
		if probe.Keys[i], err = scanInt32(row, p.conf.KeyPath); err != nil {
			return nil, err
		}
		if probe.PayloadA[i], err = scanFloat64(row, p.conf.PayloadAPath); err != nil {
			return nil, err
		}
		if probe.PayloadB[i], err = scanInt32(row, p.conf.PayloadBPath); err != nil {
			return nil, err
		}
	}
	return probe, nil
}

// ParseBuildFile is ParseBuild over the file at path
func (p *Parser) ParseBuildFile(path string, comm sjoin.Comm) (*sjoin.BuildChunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.ParseBuild(f, comm)
}

// ParseProbeFile is ParseProbe over the file at path
func (p *Parser) ParseProbeFile(path string, comm sjoin.Comm) (*sjoin.ProbeChunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.ParseProbe(f, comm)
}

// portion scans every data line, then keeps the ones in this rank's range
func (p *Parser) portion(r io.Reader, comm sjoin.Comm) ([]row, error) {
	if err := comm.Validate(); err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.conf.MaxBufferSize)
	// ignore header lines, if configured to do so
	lineNo := 0
	for i := 0; i < p.conf.HeaderLines && scanner.Scan(); i++ {
		lineNo++
	}
	lines := make([]row, 0)
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 {
			continue
		}
		if p.conf.Comment != 0 && strings.HasPrefix(text, string(p.conf.Comment)) {
			continue
		}
		lines = append(lines, row{line: lineNo, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("unable to read JSONL input: %w", err)
	}
	start, end := partition.Range(int64(len(lines)), comm.Size, comm.Rank)
	return lines[start:end], nil
}
