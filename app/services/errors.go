package services

import "errors"

var (
	// ErrReservationNotFound 预约不存在
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrPaymentNotFound 支付记录不存在
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrInvalidStatus 状态字符串不在合法集合内
	ErrInvalidStatus = errors.New("invalid payment status")
	// ErrInvalidAmount 预约金额必须大于 0
	ErrInvalidAmount = errors.New("invalid payment amount")
	// ErrAmountMismatch 调用方传入的金额与预约金额不一致
	ErrAmountMismatch = errors.New("payment amount does not match reservation amount")
	// ErrExternalGateway 网关没有返回支付意向
	ErrExternalGateway = errors.New("could not create payment preference with payment gateway")
	// ErrVoucherGeneration 当前状态不能生成凭证，或生成失败
	ErrVoucherGeneration = errors.New("cannot generate voucher")
)
