package opt

// ExponentialLR decays the optimizer's learning rate by gamma every
// epoch.
type ExponentialLR struct {
	optimizer *SGD
	gamma     float64
}

func NewExponentialLR(optimizer *SGD, gamma float64) *ExponentialLR {
	return &ExponentialLR{
		optimizer: optimizer,
		gamma:     gamma,
	}
}

func (s *ExponentialLR) Step() {
	s.optimizer.LearningRate *= s.gamma
}

func (s *ExponentialLR) GetLR() float64 {
	return s.optimizer.LearningRate
}
