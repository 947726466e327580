// Package voucher 生成已支付订单的 PDF 凭证
package voucher

import (
	"bytes"
	"fmt"
	"time"

	"github.com/SistemaDeReservasTurnos/reservas-pagos-service/app/models/payment"

	"github.com/go-pdf/fpdf"
)

const notAvailable = "N/A"

// 品牌主色
var brandColor = [3]int{0, 158, 227}

// Config 凭证参数
type Config struct {
	BrandName string
	Currency  string
	Location  *time.Location
}

// PDFRenderer 无状态的 PDF 凭证生成器，可并发使用
type PDFRenderer struct {
	cfg Config
}

// NewPDFRenderer 创建生成器
func NewPDFRenderer(cfg Config) *PDFRenderer {
	if cfg.BrandName == "" {
		cfg.BrandName = "StudioBarber"
	}
	if cfg.Currency == "" {
		cfg.Currency = "COP"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &PDFRenderer{cfg: cfg}
}

// FormatDate 凭证上的日期格式，例如 05/03/2025 a las 14:30 hs.
func (r *PDFRenderer) FormatDate(t time.Time) string {
	return t.In(r.cfg.Location).Format("02/01/2006 a las 15:04 hs.")
}

// FormatAmount 两位小数加币种，例如 $ 45000.50 COP
func (r *PDFRenderer) FormatAmount(p *payment.Payment) string {
	return fmt.Sprintf("$ %s %s", p.Amount.StringFixed(2), r.cfg.Currency)
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}

// Render 生成凭证，调用方负责检查支付状态
func (r *PDFRenderer) Render(p *payment.Payment) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("voucher: payment is nil")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Comprobante de pago %d", p.ID), true)
	pdf.SetCreator(r.cfg.BrandName, true)
	pdf.SetCreationDate(p.CreatedAt)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	width, _ := pdf.GetPageSize()
	contentWidth := width - 40

	// 品牌头
	pdf.SetFillColor(brandColor[0], brandColor[1], brandColor[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentWidth, 18, tr(r.cfg.BrandName), "", 1, "C", true, 0, "")
	pdf.Ln(8)

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentWidth, 10, tr("Comprobante de Ingreso"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentWidth, 6, tr(r.FormatDate(p.CreatedAt)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// 金额
	pdf.SetTextColor(brandColor[0], brandColor[1], brandColor[2])
	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(contentWidth, 14, tr(r.FormatAmount(p)), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// 明细
	pdf.SetTextColor(40, 40, 40)
	rows := [][2]string{
		{"Estado de Pago:", string(p.Status)},
		{"Referencia Externa:", fmt.Sprintf("%d", p.ID)},
		{"ID de Operación:", orNA(p.ExternalPaymentID)},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentWidth/2, 8, tr(row[0]), "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentWidth/2, 8, tr(row[1]), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	// 付款方 / 收款方
	blocks := [][2]string{
		{"Desde:", fmt.Sprintf("Reserva N° %d", p.ReservationID)},
		{"Hacia:", fmt.Sprintf("%s | Cuenta de Comercio", r.cfg.BrandName)},
	}
	for _, block := range blocks {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(contentWidth, 7, tr(block[0]), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentWidth, 7, tr(block[1]), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("voucher: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
