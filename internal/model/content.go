package model

import "strings"

// ProductContent 内容生成流水线产出的记录
// 对发布核心只读：发布流程不修改生成内容，只消费
type ProductContent struct {
	BaseModel
	UserID int64 `gorm:"index;not null"`

	// --- 生成结果 ---
	ProductName      string `gorm:"size:255;not null"` // 必填，生成侧保证
	GeneratedContent string `gorm:"type:text"`         // 半结构化全文，可能为空
	Features         string `gorm:"type:text"`
	Description      string `gorm:"type:text"`
}

func (ProductContent) TableName() string {
	return "product_contents"
}

// ExtractionText 属性提取与分类的原料文本：
// 商品名、特性、描述、生成全文拼在一起，线索在哪个字段都不能漏
func (c *ProductContent) ExtractionText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{c.ProductName, c.Features, c.Description, c.GeneratedContent} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
