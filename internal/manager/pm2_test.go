package manager

import "testing"

const jlistFixture = `[
  {
    "pid": 4321,
    "name": "api",
    "pm_id": 0,
    "monit": {"memory": 12958000, "cpu": 1.5},
    "pm2_env": {
      "exec_mode": "cluster_mode",
      "status": "online",
      "restart_time": 3,
      "pm_uptime": 1700000000000,
      "pm_out_log_path": "/home/app/.pm2/logs/api-out-0.log",
      "pm_err_log_path": "/home/app/.pm2/logs/api-error-0.log",
      "NODE_APP_INSTANCE": 2,
      "axm_options": {}
    }
  },
  {
    "pid": 4400,
    "name": "worker",
    "pm_id": 1,
    "monit": {"memory": 52428800, "cpu": 0},
    "pm2_env": {
      "exec_mode": "fork_mode",
      "status": "stopped",
      "restart_time": 0,
      "pm_uptime": 0,
      "pm_out_log_path": "/home/app/.pm2/logs/worker-out-1.log",
      "pm_err_log_path": "/home/app/.pm2/logs/worker-error-1.log",
      "axm_options": {}
    }
  },
  {
    "pid": 4500,
    "name": "pm2-logrotate",
    "pm_id": 2,
    "monit": {"memory": 1048576, "cpu": 0.1},
    "pm2_env": {
      "exec_mode": "fork_mode",
      "status": "online",
      "restart_time": 0,
      "pm_uptime": 1700000000000,
      "pm_out_log_path": "/home/app/.pm2/logs/pm2-logrotate-out.log",
      "pm_err_log_path": "/home/app/.pm2/logs/pm2-logrotate-error.log",
      "axm_options": {"isModule": true}
    }
  }
]`

func TestParseProcessList(t *testing.T) {
	entries, err := parseProcessList([]byte(jlistFixture))
	if err != nil {
		t.Fatalf("parseProcessList: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	api := entries[0]
	if api.ID != 0 || api.Name != "api" {
		t.Errorf("entry 0 = %d/%q, want 0/api", api.ID, api.Name)
	}
	if api.ExecMode != "cluster_mode" {
		t.Errorf("exec mode = %q, want cluster_mode", api.ExecMode)
	}
	if api.Instance == nil || *api.Instance != 2 {
		t.Errorf("instance = %v, want 2", api.Instance)
	}
	if api.RestartCount != 3 {
		t.Errorf("restart count = %d, want 3", api.RestartCount)
	}
	if api.MemoryBytes != 12958000 {
		t.Errorf("memory = %d, want 12958000", api.MemoryBytes)
	}
	if api.CPUPercent != 1.5 {
		t.Errorf("cpu = %v, want 1.5", api.CPUPercent)
	}
	if api.UptimeStart != 1700000000000 {
		t.Errorf("uptime start = %d, want 1700000000000", api.UptimeStart)
	}
	if api.OutLogPath != "/home/app/.pm2/logs/api-out-0.log" {
		t.Errorf("out log path = %q", api.OutLogPath)
	}
	if api.IsModule {
		t.Error("api flagged as module")
	}

	worker := entries[1]
	if worker.Instance != nil {
		t.Errorf("worker instance = %v, want nil", worker.Instance)
	}
	if worker.Status != "stopped" {
		t.Errorf("worker status = %q, want stopped", worker.Status)
	}

	module := entries[2]
	if !module.IsModule {
		t.Error("pm2-logrotate not flagged as module")
	}
}

func TestParseProcessList_Empty(t *testing.T) {
	entries, err := parseProcessList([]byte("[]"))
	if err != nil {
		t.Fatalf("parseProcessList: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestParseProcessList_Malformed(t *testing.T) {
	if _, err := parseProcessList([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestNewPM2_Defaults(t *testing.T) {
	p := NewPM2(PM2Config{})
	if p.bin != "pm2" {
		t.Errorf("bin = %q, want pm2", p.bin)
	}
	if p.timeout != DefaultCallTimeout {
		t.Errorf("timeout = %v, want %v", p.timeout, DefaultCallTimeout)
	}
}
