package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/hudsonhicksoffish/the-click-continued/internal/comm"
	"github.com/hudsonhicksoffish/the-click-continued/internal/models"
	"github.com/hudsonhicksoffish/the-click-continued/internal/service"
)

// autoIncrementSpec fires every 5 minutes; this is what keeps the pot growing
// with no players connected.
const autoIncrementSpec = "0 */5 * * * *"

// Scheduler runs the periodic jackpot auto-increment.
type Scheduler struct {
	Cron      *cron.Cron
	Jackpot   *service.JackpotService
	Broadcast func(msgType string, payload any)
}

func NewScheduler(jackpot *service.JackpotService, broadcast func(msgType string, payload any)) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Jackpot:   jackpot,
		Broadcast: broadcast,
	}
}

// Register adds the auto-increment task.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc(autoIncrementSpec, s.AutoIncrement); err != nil {
		return fmt.Errorf("register auto-increment task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Info("scheduler stopped")
}

// AutoIncrement adds the periodic micro-increment to the jackpot as the
// system actor and announces the new value to every client.
func (s *Scheduler) AutoIncrement() {
	current, err := s.Jackpot.GetJackpot()
	if err != nil {
		log.Errorf("Error in auto increment: %s", err)
		return
	}

	newAmount := current.CurrentAmount.Add(models.AutoIncrement).Round(3)
	if !s.Jackpot.UpdateJackpot(newAmount, models.SystemActor) {
		return
	}

	s.Jackpot.LogHistory(current.CurrentAmount, newAmount, models.ActionAutoIncrement, models.SystemActor)
	s.Broadcast(comm.TypeJackpotUpdate, comm.JackpotUpdate{Amount: newAmount})
}
