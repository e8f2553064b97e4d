package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// SettlementNoPrefix 结算单号前缀
const SettlementNoPrefix = "ST"

// Generator 基于 Snowflake 的编号生成器，多实例部署时每个实例使用不同节点号
type Generator struct {
	node *snowflake.Node
}

// New 创建编号生成器，nodeID 取值 0-1023
func New(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d failed: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// NextID 生成 64 位 ID
func (g *Generator) NextID() uint64 {
	return uint64(g.node.Generate().Int64())
}

// NextSettlementNo 生成结算单号
func (g *Generator) NextSettlementNo() string {
	return SettlementNoPrefix + g.node.Generate().String()
}
