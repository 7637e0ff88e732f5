package mocks

//go:generate mockgen -source=../port/pool/pool.go -destination=pool_mock.go -package=mocks -mock_names=Repository=MockPoolRepository
//go:generate mockgen -source=../port/eventbus/eventbus.go -destination=eventbus_mock.go -package=mocks
//go:generate mockgen -source=../port/locker/locker.go -destination=locker_mock.go -package=mocks
//go:generate mockgen -source=../port/idempotency/idempotency.go -destination=idempotency_mock.go -package=mocks -mock_names=Store=MockIdempotencyStore
//go:generate mockgen -source=../port/notifier/pool.go -destination=notifier_mock.go -package=mocks
//go:generate mockgen -source=../port/metrics/metrics.go -destination=metrics_mock.go -package=mocks
