package parse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fogsched/epoceis/internal/domain"
)

// NodeSet parses NODE records into a domain.NodeSet. Blank lines and
// '#' comments are ignored; trailing optional fields default to 0.
func NodeSet(r io.Reader) (domain.NodeSet, error) {
	var nodes []domain.Node

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		fields := strings.Split(raw, ",")
		if fields[0] != "NODE" {
			return domain.NodeSet{}, &domain.ParseError{Line: lineNo, Raw: raw, Err: fmt.Errorf("unknown record kind %q", fields[0])}
		}
		node, err := parseNode(fields[1:])
		if err != nil {
			return domain.NodeSet{}, &domain.ParseError{Line: lineNo, Raw: raw, Err: err}
		}
		nodes = append(nodes, node)
	}
	if err := scanner.Err(); err != nil {
		return domain.NodeSet{}, fmt.Errorf("parse: reading node set: %w", err)
	}

	return domain.NewNodeSet(nodes)
}

func parseNode(fields []string) (domain.Node, error) {
	if len(fields) < 7 || len(fields) > 11 {
		return domain.Node{}, fmt.Errorf("NODE wants 7-11 fields, got %d", len(fields))
	}
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return "0"
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.Node{}, fmt.Errorf("node id: %w", err)
	}
	mips, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("mips: %w", err)
	}
	ram, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("ram: %w", err)
	}
	bw, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("bandwidth: %w", err)
	}
	storage, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("storage: %w", err)
	}
	isCloud, err := strconv.ParseBool(fields[5])
	if err != nil {
		return domain.Node{}, fmt.Errorf("isCloud: %w", err)
	}
	costPerSec, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("costPerSec: %w", err)
	}
	latencyMs, err := strconv.ParseFloat(get(7), 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("latencyMs: %w", err)
	}
	x, err := strconv.ParseFloat(get(8), 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(get(9), 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("y: %w", err)
	}
	energyPerSec, err := strconv.ParseFloat(get(10), 64)
	if err != nil {
		return domain.Node{}, fmt.Errorf("energyPerSec: %w", err)
	}

	return domain.Node{
		ID:           id,
		MIPS:         mips,
		RAM:          ram,
		Bandwidth:    bw,
		Storage:      storage,
		IsCloud:      isCloud,
		CostPerSec:   costPerSec,
		LatencyMs:    latencyMs,
		X:            x,
		Y:            y,
		EnergyPerSec: energyPerSec,
	}, nil
}

// WriteNodeSet renders ns back into the NODE grammar NodeSet parses,
// always emitting the full 11-field form so round-tripping never loses
// the optional trailing fields.
func WriteNodeSet(ns domain.NodeSet) []string {
	var lines []string
	for _, id := range ns.IDs() {
		n, _ := ns.Get(id)
		lines = append(lines, fmt.Sprintf("NODE,%d,%s,%s,%s,%s,%t,%s,%s,%s,%s,%s",
			n.ID,
			formatFloat(n.MIPS),
			formatFloat(n.RAM),
			formatFloat(n.Bandwidth),
			formatFloat(n.Storage),
			n.IsCloud,
			formatFloat(n.CostPerSec),
			formatFloat(n.LatencyMs),
			formatFloat(n.X),
			formatFloat(n.Y),
			formatFloat(n.EnergyPerSec),
		))
	}
	return lines
}
