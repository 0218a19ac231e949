package game

import "github.com/mlange-42/ark/ecs"

// updateFood applies regrowth and rot, then removes food that is empty and
// cannot grow back.
func (s *Sim) updateFood() {
	var spent []ecs.Entity

	query := s.foodFilter.Query()
	for query.Next() {
		_, food := query.Get()
		if food.Regrow != 0 {
			food.Amount = min(max(food.Amount+food.Regrow, 0), food.Max)
		}
		if food.Depleted() && food.Regrow <= 0 {
			spent = append(spent, query.Entity())
		}
	}

	for _, e := range spent {
		s.foodMapper.Remove(e)
	}
}
