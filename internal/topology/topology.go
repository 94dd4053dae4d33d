// Package topology optionally auto-populates a domain.Architecture from a
// live AWS instance type's vCPU count, grounded on
// pkg/discovery/instances.go's InstanceDiscoverer, for users benchmarking
// directly on EC2 hardware instead of hand-authoring a *.cfg file.
package topology

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/partsched/partsched/internal/domain"
)

// Discoverer wraps the EC2 client used to look up an instance type's
// topology.
type Discoverer struct {
	client *ec2.Client
}

// New builds a Discoverer using the default AWS credential chain.
func New(ctx context.Context) (*Discoverer, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("topology: load aws config: %w", err)
	}
	return &Discoverer{client: ec2.NewFromConfig(cfg)}, nil
}

// ArchitectureFor builds a single-CPU domain.Architecture with one core per
// vCPU reported for instanceType, a coarse but workable stand-in for a
// *.cfg file when none is available.
func (d *Discoverer) ArchitectureFor(ctx context.Context, instanceType string) (domain.Architecture, error) {
	out, err := d.client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
		InstanceTypes: []types.InstanceType{types.InstanceType(instanceType)},
	})
	if err != nil {
		return nil, fmt.Errorf("topology: describe instance type %q: %w", instanceType, err)
	}
	if len(out.InstanceTypes) == 0 {
		return nil, fmt.Errorf("topology: instance type %q not found", instanceType)
	}

	info := out.InstanceTypes[0]
	vcpus := 1
	if info.VCpuInfo != nil && info.VCpuInfo.DefaultVCpus != nil {
		vcpus = int(*info.VCpuInfo.DefaultVCpus)
	}

	cpu := &domain.CPU{ID: 0}
	cpu.Cores = make([]*domain.Core, vcpus)
	for i := 0; i < vcpus; i++ {
		cpu.Cores[i] = &domain.Core{ID: i, CPU: cpu}
	}

	return domain.Architecture{cpu}, nil
}
