/*
Copyright 2025 The Kubernetes Authors.

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

package scenario

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sergelogvinov/fleet-planner/pkg/apis/v1alpha1"
)

// ParseText reads a scenario in the line format of the request stream:
//
//	N
//	(model, cpu, memory, purchaseCost, dailyCost)   N lines
//	M
//	(vmType, cpu, memory, dual)                     M lines, dual is 0 or 1
//	T
//	R                                               T times, followed by R lines
//	(add, vmType, vmID) | (del, vmID)
//
// Blank lines are ignored.
func ParseText(r io.Reader) (*v1alpha1.Scenario, error) {
	p := &textParser{scanner: bufio.NewScanner(r)}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	s := &v1alpha1.Scenario{}

	n, err := p.count("server models")
	if err != nil {
		return nil, err
	}

	for range n {
		model, err := p.serverModel()
		if err != nil {
			return nil, err
		}

		s.Servers = append(s.Servers, model)
	}

	if n, err = p.count("VM models"); err != nil {
		return nil, err
	}

	for range n {
		vm, err := p.vmModel()
		if err != nil {
			return nil, err
		}

		s.VMs = append(s.VMs, vm)
	}

	days, err := p.count("days")
	if err != nil {
		return nil, err
	}

	s.Days = make([][]v1alpha1.Operation, 0, days)

	for day := range days {
		n, err := p.count(fmt.Sprintf("requests of day %d", day+1))
		if err != nil {
			return nil, err
		}

		ops := make([]v1alpha1.Operation, 0, n)

		for range n {
			op, err := p.operation()
			if err != nil {
				return nil, err
			}

			ops = append(ops, op)
		}

		s.Days = append(s.Days, ops)
	}

	return s, nil
}

type textParser struct {
	scanner *bufio.Scanner
	line    int
}

// next returns the next non-blank line.
func (p *textParser) next() (string, error) {
	for p.scanner.Scan() {
		p.line++

		if text := strings.TrimSpace(p.scanner.Text()); text != "" {
			return text, nil
		}
	}

	if err := p.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read line %d: %w", p.line+1, err)
	}

	return "", errors.Wrapf(ErrSyntax, "line %d: unexpected end of input", p.line+1)
}

func (p *textParser) fail(format string, args ...any) error {
	return errors.Wrapf(ErrSyntax, "line %d: %s", p.line, fmt.Sprintf(format, args...))
}

func (p *textParser) count(what string) (int, error) {
	text, err := p.next()
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, p.fail("expected the number of %s, got %q", what, text)
	}

	return n, nil
}

// tuple splits "(a, b, c)" into its trimmed fields.
func (p *textParser) tuple(sizes ...int) ([]string, error) {
	text, err := p.next()
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(text, "(") || !strings.HasSuffix(text, ")") {
		return nil, p.fail("expected a parenthesized tuple, got %q", text)
	}

	fields := strings.Split(text[1:len(text)-1], ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	for _, size := range sizes {
		if len(fields) == size {
			return fields, nil
		}
	}

	return nil, p.fail("unexpected number of fields in %q", text)
}

func (p *textParser) ints(fields []string) ([]int64, error) {
	values := make([]int64, len(fields))

	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, p.fail("expected an integer, got %q", f)
		}

		values[i] = v
	}

	return values, nil
}

func (p *textParser) serverModel() (v1alpha1.ServerModel, error) {
	fields, err := p.tuple(5)
	if err != nil {
		return v1alpha1.ServerModel{}, err
	}

	values, err := p.ints(fields[1:])
	if err != nil {
		return v1alpha1.ServerModel{}, err
	}

	return v1alpha1.ServerModel{
		Name:         fields[0],
		CPU:          int(values[0]),
		Memory:       int(values[1]),
		PurchaseCost: values[2],
		DailyCost:    values[3],
	}, nil
}

func (p *textParser) vmModel() (v1alpha1.VMModel, error) {
	fields, err := p.tuple(4)
	if err != nil {
		return v1alpha1.VMModel{}, err
	}

	values, err := p.ints(fields[1:])
	if err != nil {
		return v1alpha1.VMModel{}, err
	}

	vm := v1alpha1.VMModel{
		Name:   fields[0],
		CPU:    int(values[0]),
		Memory: int(values[1]),
	}

	switch values[2] {
	case 0:
		vm.Mode = v1alpha1.DeploymentSingle
	case 1:
		vm.Mode = v1alpha1.DeploymentDual
	default:
		return v1alpha1.VMModel{}, p.fail("deployment flag of %s must be 0 or 1, got %d", vm.Name, values[2])
	}

	return vm, nil
}

func (p *textParser) operation() (v1alpha1.Operation, error) {
	fields, err := p.tuple(2, 3)
	if err != nil {
		return nil, err
	}

	switch {
	case fields[0] == opAdd && len(fields) == 3:
		id, err := p.ints(fields[2:])
		if err != nil {
			return nil, err
		}

		return v1alpha1.AddOperation{VMType: fields[1], ID: int(id[0])}, nil
	case fields[0] == opDel && len(fields) == 2:
		id, err := p.ints(fields[1:])
		if err != nil {
			return nil, err
		}

		return v1alpha1.RemoveOperation{ID: int(id[0])}, nil
	}

	return nil, p.fail("unknown request (%s)", strings.Join(fields, ", "))
}
