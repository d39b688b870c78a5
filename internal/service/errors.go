package service

import "errors"

var (
    ErrEventNotFound = errors.New("event not found")
    ErrEntryNotFound = errors.New("queue entry not found")
    // ErrOfferExpired 对过期 offer 发起 finalize，调用方需重新排队
    ErrOfferExpired = errors.New("offer expired")
    // ErrNotOffered 条目不处于 offered 状态，无法完成购买
    ErrNotOffered = errors.New("entry is not holding an offer")
    // ErrAlreadyFinalized 条目已以相反的结果终结，拒绝而非静默接受
    ErrAlreadyFinalized = errors.New("entry already finalized")
    // ErrPurchaseRequired 追加购票要求该用户已有成交票
    ErrPurchaseRequired = errors.New("purchase required before requesting additional spot")
    // ErrCapacityExhausted 内部信号：容量不足，分配路径据此降级为 waiting，不对外暴露
    ErrCapacityExhausted = errors.New("capacity exhausted")
    // ErrConcurrentModification 乐观锁重试次数耗尽
    ErrConcurrentModification = errors.New("concurrent modification, please retry")
)
