package archive

import (
	"encoding/json"
	"io/ioutil"
)

type AWSConfig struct {
	Region        string `json:"aws_region"`
	AccessKeyID   string `json:"aws_access_key_id"`
	SecretKey     string `json:"aws_secret_access_key"`
	Token         string `json:"aws_token"`
	LogBucketName string `json:"aws_log_bucket_name"`
	LogFolderPath string `json:"aws_log_folder_path"`
}

// Enabled returns true if the config has enough information to reach S3.
func (self AWSConfig) Enabled() bool {
	return self.Region != "" && self.LogBucketName != ""
}

func GetAWSconfigFromFile(path string) (AWSConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return AWSConfig{}, err
	}
	result := AWSConfig{}
	err = json.Unmarshal(data, &result)
	return result, err
}
