// Package types 定义支付网关适配器的通用契约
package types

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item 支付单中的一行商品
type Item struct {
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// BackURLs 支付完成后的浏览器跳转地址
type BackURLs struct {
	Success string
	Pending string
	Failure string
}

// PreferenceRequest 创建支付意向的参数
//
// ExternalReference 为本地支付记录 ID，网关回调时原样带回
type PreferenceRequest struct {
	Items             []Item
	BackURLs          BackURLs
	ExternalReference string
	PayerEmail        string
}

// Total 所有商品的总金额
func (r *PreferenceRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Title 第一行商品的标题，网关只支持一个描述字段时使用
func (r *PreferenceRequest) Title() string {
	if len(r.Items) == 0 {
		return ""
	}
	return r.Items[0].Title
}

// Preference 网关返回的支付意向
type Preference struct {
	GatewayID   string
	PaymentLink string
}

// Gateway 支付网关适配器
//
// CreatePreference 任何失败都返回 ok=false，失败原因由适配器自己记录日志
type Gateway interface {
	Name() string
	CreatePreference(ctx context.Context, req *PreferenceRequest) (pref *Preference, ok bool)
}
