package api

import "errors"

// 事务内部用于区分HTTP状态的哨兵错误
var (
	errQRNotFound       = errors.New("二维码不存在")
	errCustomerNotFound = errors.New("客户不存在")
	errSchemeNotFound   = errors.New("方案不存在")
	errAlreadyScanned   = errors.New("二维码已被扫描")
	errNotEnoughPoints  = errors.New("积分不足")
)
