package types

// Observer 迭代观察者
// 每发出一个 Changeset 调用一次 Update，用于日志、记录和绘图。
type Observer interface {
	Update(cs *Changeset)
}

// ObserverFunc 函数形式的观察者
type ObserverFunc func(cs *Changeset)

// Update 调用自身
func (f ObserverFunc) Update(cs *Changeset) { f(cs) }

type nopObserver struct{}

func (nopObserver) Update(*Changeset) {}

// NopObserver 默认的空观察者
var NopObserver Observer = nopObserver{}

// Observers 组合多个观察者，按顺序转发
type Observers []Observer

// Update 转发到每个观察者
func (list Observers) Update(cs *Changeset) {
	for _, o := range list {
		if o != nil {
			o.Update(cs)
		}
	}
}
