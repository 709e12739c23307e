package framework

import (
	"context"
	"fmt"
)

type stage struct {
	name string
	fn   ProcessorFunc
}

// Pipeline 按顺序执行的处理阶段，任一阶段失败即停止
type Pipeline struct {
	stages []stage
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Then 追加一个阶段
func (p *Pipeline) Then(name string, fn ProcessorFunc) *Pipeline {
	p.stages = append(p.stages, stage{name: name, fn: fn})
	return p
}

// Run 依次执行；ctx 结束后不再进入下一阶段
func (p *Pipeline) Run(ctx context.Context) error {
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
